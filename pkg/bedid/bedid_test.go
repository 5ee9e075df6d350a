package bedid

import (
	"errors"
	"testing"

	"bedbook/pkg/model"
)

func sampleCatalog() *model.RoomCatalog {
	return &model.RoomCatalog{
		PropertyID: "p1",
		Floors: []model.Floor{
			{Number: 1, Rooms: []model.Room{
				{Number: "101", Beds: []string{"Bed A", "Bed B"}},
				{Number: "A-12", Beds: []string{"X", "Y", "Z"}},
			}},
			{Number: 2, Rooms: []model.Room{
				{Number: "201", Beds: []string{"Bed\tA"}},
				{Number: "101", Beds: []string{"Bed A"}},
			}},
		},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Bed A", "BedA"},
		{"BedA", "BedA"},
		{"  Bed   A ", "BedA"},
		{"Bed\tA\n", "BedA"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}

	if Normalize("Bed A") != Normalize("BedA") {
		t.Error("whitespace variants must compare equal")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Token
		wantErr bool
	}{
		{
			name:  "simple",
			token: "double-101-BedA",
			want:  Token{SharingType: "double", RoomNumber: "101", BedLabel: "BedA"},
		},
		{
			name:  "hyphenated room number",
			token: "triple-A-12-X",
			want:  Token{SharingType: "triple", RoomNumber: "A-12", BedLabel: "X"},
		},
		{
			name:  "spaced label kept raw",
			token: "double-101-Bed A",
			want:  Token{SharingType: "double", RoomNumber: "101", BedLabel: "Bed A"},
		},
		{name: "two segments", token: "double-101", wantErr: true},
		{name: "empty", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name      string
		room      string
		label     string
		wantOK    bool
		wantFloor int
		wantLabel string
	}{
		{"compact label resolves to spaced", "101", "BedA", true, 1, "Bed A"},
		{"first floor wins", "101", "Bed A", true, 1, "Bed A"},
		{"tab in catalog", "201", "BedA", true, 2, "Bed\tA"},
		{"hyphenated room", "A-12", "Z", true, 1, "Z"},
		{"unknown bed", "101", "BedC", false, 0, ""},
		{"unknown room", "999", "BedA", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := Resolve(catalog, tt.room, tt.label)
			if ok != tt.wantOK {
				t.Fatalf("Resolve ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if loc.Floor != tt.wantFloor || loc.BedLabel != tt.wantLabel {
				t.Errorf("Resolve = %+v, want floor %d label %q", loc, tt.wantFloor, tt.wantLabel)
			}
		})
	}

	if _, ok := Resolve(nil, "101", "BedA"); ok {
		t.Error("nil catalog must not resolve")
	}
}

func TestTokenToCanonicalIdentifier(t *testing.T) {
	catalog := sampleCatalog()

	tok, err := Parse("double-101-BedA")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	loc, ok := Resolve(catalog, tok.RoomNumber, tok.BedLabel)
	if !ok {
		t.Fatal("expected bed to resolve")
	}
	got := Canonical(tok.SharingType, loc.RoomNumber, loc.BedLabel)
	if got != "double-101-Bed A" {
		t.Errorf("canonical = %q, want %q", got, "double-101-Bed A")
	}
}
