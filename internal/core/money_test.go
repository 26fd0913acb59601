package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"-12.5", "-12.5", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"   ", "", false},
		{"1e3", "1000", true},
		{"12345678901234567890", "12345678901234567890", true},
		{"123456789012345678901", "", false},
		{"1e10000000", "", false},
		{"1e-30", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{NewMoney("800"), "Rs.800.00"},
		{NewMoney("1000"), "Rs.1000.00"},
		{NewMoney("0.005"), "Rs.0.01"},
		{NewMoney("-12.5"), "-Rs.12.50"},
		{Money{}, "Rs.0.00"},
	}
	for _, tc := range cases {
		if got := tc.m.Format("Rs."); got != tc.want {
			t.Fatalf("Format(%s) = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func TestMoneyJSONIsBareNumber(t *testing.T) {
	b, err := json.Marshal(NewMoney("500.0"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "500" {
		t.Fatalf("unexpected json %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`500.0`), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !m.Equal(NewMoney("500")) {
		t.Fatalf("unexpected value %s", m)
	}
	if err := json.Unmarshal([]byte(`"12.30"`), &m); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if !m.Equal(NewMoney("12.3")) {
		t.Fatalf("unexpected value %s", m)
	}
}

func TestMoneyInRange(t *testing.T) {
	if !(Money{}).InRange() {
		t.Fatal("zero must be in range")
	}
	if !NewMoney("-99999.99").InRange() {
		t.Fatal("ordinary amount must be in range")
	}
	if NewMoney("1e21").InRange() {
		t.Fatal("1e21 must be out of range")
	}
}
