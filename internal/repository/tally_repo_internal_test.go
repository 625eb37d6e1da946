package repository

import (
	"testing"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTuple(t *testing.T) {
	tally := &models.Tally{
		MessageID:     "post1",
		Going:         []string{"ana", "bo"},
		Maybe:         []string{"cy"},
		TTL:           "1700000000",
		CreatedAt:     1600000000000,
		EventDateTime: "October 14, 2020 12:15 PM",
		MinPeople:     4,
	}

	tuple := encodeTuple(tally)
	require.Len(t, tuple, tupleLen)
	assert.Equal(t, []string{}, tuple[fieldDeclined-1])

	// msgpack hands string arrays back as []interface{}
	decoded, err := decodeTuple([]interface{}{
		"post1",
		[]interface{}{"ana", "bo"},
		[]interface{}{},
		[]interface{}{"cy"},
		"1700000000",
		uint64(1600000000000),
		"October 14, 2020 12:15 PM",
		int8(4),
	})

	require.NoError(t, err)
	tally.Declined = []string{}
	assert.Equal(t, tally, decoded)
}

func TestDecodeResponse(t *testing.T) {
	tests := map[string]struct {
		data     []interface{}
		expected error
	}{
		"Empty":      {data: []interface{}{}, expected: models.ErrTallyNotFound},
		"NilTuple":   {data: []interface{}{nil}, expected: models.ErrTallyNotFound},
		"NotATuple":  {data: []interface{}{"post1"}, expected: models.ErrFailedToProcessData},
		"ShortTuple": {data: []interface{}{[]interface{}{"post1"}}, expected: models.ErrFailedToProcessData},
		"BadSet": {
			data:     []interface{}{[]interface{}{"post1", "ana", []interface{}{}, []interface{}{}, "1", 1, "", 4}},
			expected: models.ErrFailedToProcessData,
		},
		"BadMember": {
			data:     []interface{}{[]interface{}{"post1", []interface{}{7}, []interface{}{}, []interface{}{}, "1", 1, "", 4}},
			expected: models.ErrFailedToProcessData,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeResponse("post1", tc.data)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestSetField(t *testing.T) {
	f, err := setField(models.StatusMaybe)
	assert.NoError(t, err)
	assert.Equal(t, 4, f)

	_, err = setField(models.StatusNone)
	assert.ErrorIs(t, err, models.ErrUnknownStatus)
}

func TestUnionAndDifference(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, union([]string{"a", "b"}, []string{"b", "c", "c"}))
	assert.Equal(t, []string{"a"}, union(nil, []string{"a"}))
	assert.Equal(t, []string{"a", "c"}, difference([]string{"a", "b", "c"}, []string{"b", "x"}))
	assert.Equal(t, []string{}, difference(nil, []string{"b"}))
}
