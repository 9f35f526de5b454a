package pb

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used in SensorService structs
const (
	FieldMode      = "mode"
	FieldStart     = "start"
	FieldEnd       = "end"
	FieldReadings  = "readings"
	FieldCount     = "count"
	FieldSampled   = "sampled"
	FieldAverage   = "average"
	FieldMin       = "min"
	FieldMax       = "max"
	FieldSessionID = "session_id"
	FieldPolling   = "polling"
	FieldStep      = "step"
	FieldStarted   = "started_at"
	FieldStopped   = "stopped_at"
	FieldID        = "id"
	FieldTimestamp = "timestamp"
	FieldAmbient   = "ambient"
	FieldRed       = "red"
	FieldGreen     = "green"
	FieldBlue      = "blue"
	FieldProximity = "proximity"
	FieldGesture   = "gesture"
	FieldError     = "error"
)

// TimeFormat is how timestamps travel inside structs
const TimeFormat = time.RFC3339Nano

// NewHistoryRequest builds a GetHistory request. An empty mode means every mode.
func NewHistoryRequest(mode string, start, end time.Time) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		FieldMode:  mode,
		FieldStart: start.UTC().Format(TimeFormat),
		FieldEnd:   end.UTC().Format(TimeFormat),
	})
}

// ParseHistoryRequest reads the fields of a GetHistory request
func ParseHistoryRequest(req *structpb.Struct) (mode string, start, end time.Time, err error) {
	fields := req.GetFields()
	mode = fields[FieldMode].GetStringValue()

	if start, err = parseTime(fields, FieldStart); err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if end, err = parseTime(fields, FieldEnd); err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return mode, start, end, nil
}

func parseTime(fields map[string]*structpb.Value, name string) (time.Time, error) {
	v, ok := fields[name]
	if !ok {
		return time.Time{}, fmt.Errorf("missing %s", name)
	}

	t, err := time.Parse(TimeFormat, v.GetStringValue())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
