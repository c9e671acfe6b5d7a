package grpc

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// stringField returns a string field of req, or "" when absent
func stringField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// uuidField parses a required UUID field
func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(req, name))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

// decimalField parses a required amount given either as a string or a number.
// Strings are preferred since numbers travel as float64.
func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		return d, nil
	default:
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format", name)
	}
}

// timeField parses an optional RFC 3339 timestamp or YYYY-MM-DD date, falling back to def
func timeField(req *structpb.Struct, name string, def time.Time) (time.Time, error) {
	s := stringField(req, name)
	if s == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %q", name, s)
	}
	return t, nil
}

// optionalStringField returns a pointer to a string field, nil when absent
func optionalStringField(req *structpb.Struct, name string) *string {
	if _, ok := req.GetFields()[name]; !ok {
		return nil
	}
	s := stringField(req, name)
	return &s
}

// optionalBoolField returns a pointer to a bool field, nil when absent
func optionalBoolField(req *structpb.Struct, name string) (*bool, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, nil
	}
	kind, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format", name)
	}
	b := kind.BoolValue
	return &b, nil
}

// optionalDecimalField parses an amount when present, nil when absent
func optionalDecimalField(req *structpb.Struct, name string) (*decimal.Decimal, error) {
	if _, ok := req.GetFields()[name]; !ok {
		return nil, nil
	}
	d, err := decimalField(req, name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optionalTimeField parses a timestamp when present, nil when absent
func optionalTimeField(req *structpb.Struct, name string) (*time.Time, error) {
	if stringField(req, name) == "" {
		return nil, nil
	}
	t, err := timeField(req, name, time.Time{})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// uuidListField parses an optional list of UUID strings
func uuidListField(req *structpb.Struct, name string) ([]uuid.UUID, error) {
	values := req.GetFields()[name].GetListValue().GetValues()
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(strings.TrimSpace(v.GetStringValue()))
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newResponse builds a response struct, mapping conversion failures to Internal
func newResponse(fields map[string]interface{}) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	return resp, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func stringList(items []string) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
