package style

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestSum_Deterministic(t *testing.T) {
	p := StaticPlatform(PlatformIOS)

	a, err := Normalize([]any{Fragment{"b": 2}, Fragment{"a": 1}}, p)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	b, err := Normalize(Fragment{"a": 1, "b": 2}, p)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	fa, err := Sum(a, "light")
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	fb, err := Sum(b, "light")
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}

	if fa != fb {
		t.Errorf("equal styles hashed differently: %s != %s", fa, fb)
	}
	if !fa.Valid() {
		t.Errorf("fingerprint %q is not valid", fa)
	}
	if len(fa) != FingerprintLen {
		t.Errorf("fingerprint length = %d, want %d", len(fa), FingerprintLen)
	}
}

func TestSum_ThemePartitions(t *testing.T) {
	n := Normalized{"color": "red"}

	dark, _ := Sum(n, "dark")
	light, _ := Sum(n, "light")
	if dark == light {
		t.Error("different themes produced the same fingerprint")
	}

	empty, _ := Sum(n, "")
	def, _ := Sum(n, DefaultTheme)
	if empty != def {
		t.Error("empty theme should equal the default theme")
	}
}

func TestSum_StableValue(t *testing.T) {
	// sha256(`{"style":{"a":1},"theme":"default"}`)
	const want = Fingerprint("7079b8e03f8d00a31e413d4440be88f8a62e0baca6e294f92e846599e17f9d4f")

	got, err := Sum(Normalized{"a": 1}, "")
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
	again, _ := Sum(Normalized{"a": 1.0}, DefaultTheme)
	if got != again {
		t.Errorf("integer and float forms of the same number hashed differently")
	}
}

func TestSum_Unserializable(t *testing.T) {
	_, err := Sum(Normalized{"opacity": math.NaN()}, "")
	if !errors.Is(err, ErrUnserializable) {
		t.Fatalf("expected ErrUnserializable, got %v", err)
	}

	_, err = Sum(Normalized{"onPress": make(chan int)}, "")
	if !errors.Is(err, ErrUnserializable) {
		t.Fatalf("expected ErrUnserializable for channel, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	n := Normalized{"color": "red", "flex": 1, "hidden": false}

	b, err := n.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := Normalized{"color": "red", "flex": 1.0, "hidden": false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode mismatch: got %v, want %v", got, want)
	}

	f1, _ := Sum(n, "t")
	f2, _ := Sum(got, "t")
	if f1 != f2 {
		t.Error("decoded style fingerprints differently from the original")
	}
}

func TestDecode_Corrupt(t *testing.T) {
	for _, raw := range []string{"", "{", "null", "[1,2]", "\x28\xb5\x2f\xfd"} {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Decode(%q) = %v, want ErrCorrupt", raw, err)
		}
	}
}
