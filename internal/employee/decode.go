package employee

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeRecord turns raw text cells keyed by column name into a record.
// Integer cells are read as plain base 10, so "030" is 30 and "0x1E" fails.
func DecodeRecord(raw map[string]string) (Record, error) {
	var record Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncKind(decimalHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &record,
	})
	if err != nil {
		return Record{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return Record{}, err
	}
	return record, nil
}

func decimalHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Int {
		return data, nil
	}
	return strconv.Atoi(strings.TrimSpace(data.(string)))
}
