package repository

import (
	"fmt"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/tarantool/go-tarantool"
	"go.uber.org/zap"
)

const DefaultSpace = "tallies"

// tuple field numbers, 1-based as Lua sees them
const (
	fieldMessageID = iota + 1
	fieldGoing
	fieldDeclined
	fieldMaybe
	fieldTTL
	fieldCreatedAt
	fieldEventDateTime
	fieldMinPeople
	tupleLen = fieldMinPeople
)

const (
	opAdd    = "ADD"
	opDelete = "DELETE"
)

// ensureSchemaLua creates the space and its primary index on first start.
const ensureSchemaLua = `
local space = ...
box.schema.space.create(space, {
    if_not_exists = true,
    format = {
        {name = 'message_id', type = 'string'},
        {name = 'going', type = 'array'},
        {name = 'declined', type = 'array'},
        {name = 'maybe', type = 'array'},
        {name = 'ttl', type = 'string'},
        {name = 'created_at', type = 'unsigned'},
        {name = 'event_date_time', type = 'string'},
        {name = 'min_people', type = 'unsigned'},
    },
})
box.space[space]:create_index('primary', {
    if_not_exists = true,
    parts = {{field = 1, type = 'string'}},
})
return true
`

// updateSetLua applies ADD or DELETE to one set field in a single server-side call.
// Nothing yields between the read and the update so concurrent calls cannot interleave.
const updateSetLua = `
local space, id, field, op, values = ...
local tuple = box.space[space]:get(id)
if tuple == nil then
    return nil
end
local drop = {}
if op == 'DELETE' then
    for _, v in ipairs(values) do drop[v] = true end
end
local set, seen = setmetatable({}, {__serialize = 'array'}), {}
for _, v in ipairs(tuple[field] or {}) do
    if not drop[v] and not seen[v] then
        table.insert(set, v)
        seen[v] = true
    end
end
if op == 'ADD' then
    for _, v in ipairs(values) do
        if not seen[v] then
            table.insert(set, v)
            seen[v] = true
        end
    end
end
return box.space[space]:update(id, {{'=', field, set}})
`

const purgeLua = `
local space, now = ...
local expired = {}
for _, t in box.space[space]:pairs() do
    local ttl = tonumber(t[5])
    if ttl ~= nil and ttl < now then
        table.insert(expired, t[1])
    end
end
for _, id in ipairs(expired) do
    box.space[space]:delete(id)
end
return #expired
`

type TarantoolRepository struct {
	db    *tarantool.Connection
	space string
	l     *zap.Logger
}

func NewTarantool(db *tarantool.Connection, space string, l *zap.Logger) *TarantoolRepository {
	if space == "" {
		space = DefaultSpace
	}
	return &TarantoolRepository{
		db:    db,
		space: space,
		l:     l,
	}
}

func (r *TarantoolRepository) EnsureSchema() error {
	resp, err := r.db.Eval(ensureSchemaLua, []interface{}{r.space})
	if err != nil {
		r.l.Debug("error creating space", zap.String("space", r.space), zap.Error(err))
		return fmt.Errorf("repository: schema bootstrap error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data))
	return nil
}

func (r *TarantoolRepository) Create(tally *models.Tally) error {
	r.l.Debug("creating tally", zap.Any("tally", tally))
	resp, err := r.db.Replace(r.space, encodeTuple(tally))
	if err != nil {
		r.l.Debug("error replacing tally", zap.Error(err))
		return fmt.Errorf("repository: database replace error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))
	return nil
}

func (r *TarantoolRepository) Get(messageID string) (*models.Tally, error) {
	resp, err := r.db.Select(r.space, "primary", 0, 1, tarantool.IterEq, []interface{}{messageID})
	if err != nil {
		r.l.Debug("failed to select tally", zap.Error(err))
		return nil, fmt.Errorf("repository: database select error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))
	return decodeResponse(messageID, resp.Data)
}

func (r *TarantoolRepository) AddToSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return r.updateSet(messageID, status, opAdd, users)
}

func (r *TarantoolRepository) RemoveFromSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return r.updateSet(messageID, status, opDelete, users)
}

func (r *TarantoolRepository) updateSet(messageID string, status models.Status, op string, users []string) (*models.Tally, error) {
	field, err := setField(status)
	if err != nil {
		return nil, err
	}
	r.l.Debug("updating tally set",
		zap.String("message_id", messageID),
		zap.String("set", status.SetName()),
		zap.String("op", op),
		zap.Strings("users", users))
	resp, err := r.db.Eval(updateSetLua, []interface{}{r.space, messageID, field, op, users})
	if err != nil {
		r.l.Debug("failed to update tally set", zap.Error(err))
		return nil, fmt.Errorf("repository: database update error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))
	return decodeResponse(messageID, resp.Data)
}

func (r *TarantoolRepository) Purge(now time.Time) (int, error) {
	resp, err := r.db.Eval(purgeLua, []interface{}{r.space, now.Unix()})
	if err != nil {
		r.l.Debug("failed to purge tallies", zap.Error(err))
		return 0, fmt.Errorf("repository: database purge error: %w", err)
	}
	if len(resp.Data) == 0 {
		return 0, nil
	}
	n, ok := toInt64(resp.Data[0])
	if !ok {
		r.l.Debug("unexpected purge result", zap.Any("resp", resp.Data))
		return 0, models.ErrFailedToProcessData
	}
	return int(n), nil
}

func (r *TarantoolRepository) Close() error {
	return r.db.CloseGraceful()
}

func setField(status models.Status) (int, error) {
	switch status {
	case models.StatusGoing:
		return fieldGoing, nil
	case models.StatusDeclined:
		return fieldDeclined, nil
	case models.StatusMaybe:
		return fieldMaybe, nil
	}
	return 0, models.ErrUnknownStatus
}

func encodeTuple(t *models.Tally) []interface{} {
	return []interface{}{
		t.MessageID,
		nonNil(t.Going),
		nonNil(t.Declined),
		nonNil(t.Maybe),
		t.TTL,
		uint64(t.CreatedAt),
		t.EventDateTime,
		uint64(t.MinPeople),
	}
}

// decodeResponse reads the single tuple of a select or eval response.
// An empty response or a nil tuple means the record does not exist.
func decodeResponse(messageID string, data []interface{}) (*models.Tally, error) {
	if len(data) == 0 || data[0] == nil {
		return nil, fmt.Errorf("repository: tally %s: %w", messageID, models.ErrTallyNotFound)
	}
	tuple, ok := data[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("repository: unexpected tuple type %T: %w", data[0], models.ErrFailedToProcessData)
	}
	return decodeTuple(tuple)
}

func decodeTuple(tuple []interface{}) (*models.Tally, error) {
	if len(tuple) < tupleLen {
		return nil, fmt.Errorf("repository: tuple has %d fields: %w", len(tuple), models.ErrFailedToProcessData)
	}
	t := &models.Tally{}
	var ok bool
	if t.MessageID, ok = tuple[fieldMessageID-1].(string); !ok {
		return nil, fmt.Errorf("repository: unexpected type for message id: %w", models.ErrFailedToProcessData)
	}
	for _, s := range models.Statuses {
		field, _ := setField(s)
		users, err := toStrings(tuple[field-1])
		if err != nil {
			return nil, err
		}
		t.SetFor(s, users)
	}
	t.TTL, _ = tuple[fieldTTL-1].(string)
	t.EventDateTime, _ = tuple[fieldEventDateTime-1].(string)
	createdAt, _ := toInt64(tuple[fieldCreatedAt-1])
	minPeople, _ := toInt64(tuple[fieldMinPeople-1])
	t.CreatedAt = createdAt
	t.MinPeople = int(minPeople)
	return t, nil
}

func toStrings(i interface{}) ([]string, error) {
	raw, ok := i.([]interface{})
	if !ok && i != nil {
		return nil, fmt.Errorf("repository: unexpected type for set %T: %w", i, models.ErrFailedToProcessData)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("repository: unexpected set member %v: %w", v, models.ErrFailedToProcessData)
		}
		out = append(out, s)
	}
	return out, nil
}

func toInt64(i interface{}) (int64, bool) {
	switch x := i.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
