package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID je kanonski identifikator zapisa. Bez obzira da li ga backend vraća kao
// broj, string ili ObjectID, posle dekodiranja je uvek string.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(id))
}

func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*id = ID(raw.StringValue())
	case bson.TypeObjectID:
		*id = ID(raw.ObjectID().Hex())
	case bson.TypeInt32:
		*id = ID(strconv.FormatInt(int64(raw.Int32()), 10))
	case bson.TypeInt64:
		*id = ID(strconv.FormatInt(raw.Int64(), 10))
	case bson.TypeDouble:
		*id = ID(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	case bson.TypeNull, bson.TypeUndefined:
		*id = ""
	default:
		return fmt.Errorf("cannot decode bson %s into id", t)
	}
	return nil
}

// idString vraća string oblik vrednosti koja predstavlja identifikator.
func idString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case ID:
		return string(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case primitive.ObjectID:
		return x.Hex(), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}
