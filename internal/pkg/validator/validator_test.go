package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-42d3-a456-426614174000", // v4
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b", // missing dashes
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"urn:uuid:0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8bzz",
		"abc",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	valid := []string{"approved", "rejected", "pending", "on_hold"}
	invalid := []string{"", "a", "Approved", "in review", "1pending", "_pending"}
	for _, s := range valid {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15T10:30:00.123456Z"}
	invalid := []string{"2024-01-15", "10:30:00", ""}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

type structSample struct {
	Token    string   `json:"token" validate:"required"`
	Kind     string   `json:"kind" validate:"required,oneof=in out"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Status   string   `json:"status" validate:"omitempty,status"`
	Day      string   `json:"day" validate:"omitempty,date"`
	Internal string   `json:"-" validate:"omitempty,max=2"`
}

func TestStruct(t *testing.T) {
	lat := 123.0
	err := Struct(structSample{Kind: "sideways", Lat: &lat, Status: "Bad Status", Day: "2024/01/01"})
	if err == nil {
		t.Fatal("Struct() = nil, want error")
	}

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Struct() error type = %T, want ValidationErrors", err)
	}

	got := errs.ToMap()
	want := map[string]string{
		"token":  "token is required",
		"kind":   "kind must be one of: in, out",
		"lat":    "latitude must be between -90 and 90",
		"status": "status must be lowercase letters and underscores",
		"day":    "day must be in YYYY-MM-DD format",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Struct() [%q] = %q, want %q", k, got[k], v)
		}
	}

	if err := Struct(structSample{Token: "t", Kind: "in"}); err != nil {
		t.Errorf("Struct(valid) = %v, want nil", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "event_type", Message: "invalid"},
		{Field: "credential_token", Message: "required"},
	}
	got := errs.Error()
	want := "event_type: invalid; credential_token: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "event_type", Message: "invalid"},
		{Field: "credential_token", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"event_type": "invalid", "credential_token": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestUUIDField(t *testing.T) {
	valid := "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"
	invalid := "emp-1"

	if errs := UUIDField("employee_id", nil); errs != nil {
		t.Errorf("UUIDField(nil) = %v, want nil", errs)
	}
	if errs := UUIDField("employee_id", &valid); errs != nil {
		t.Errorf("UUIDField(%q) = %v, want nil", valid, errs)
	}
	errs := UUIDField("employee_id", &invalid)
	if len(errs) != 1 || errs[0].Field != "employee_id" {
		t.Errorf("UUIDField(%q) = %v, want one employee_id error", invalid, errs)
	}
}
