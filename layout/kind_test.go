package layout

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"int", KindInt},
		{"block", KindBlock},
		{"blockarray", KindBlockArray},
		{"array", KindArray},
		{"align", KindAlign},
		{"pointer", KindPointer},
		{"struct", KindStruct},
		{"union", KindUnion},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	containers := []Kind{KindBlockArray, KindArray, KindStruct, KindUnion}
	for _, k := range containers {
		if !k.IsContainer() {
			t.Errorf("%s.IsContainer() = false, want true", k)
		}
		if k.IsScalar() {
			t.Errorf("%s.IsScalar() = true, want false", k)
		}
	}
	for _, k := range []Kind{KindInt, KindPointer} {
		if !k.IsScalar() {
			t.Errorf("%s.IsScalar() = false, want true", k)
		}
	}
	for _, k := range []Kind{KindBlock, KindAlign} {
		if k.IsContainer() || k.IsScalar() {
			t.Errorf("%s should be neither container nor scalar", k)
		}
	}
}
