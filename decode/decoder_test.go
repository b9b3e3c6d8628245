package decode

import (
	"testing"

	"github.com/ifcgeom/corepipe/step"
)

const sampleSTEP = `DATA;
#1=IFCCARTESIANPOINT((1.,2.,3.));
#2=IFCDIRECTION((0.,0.,1.));
#3=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',#1,'My Wall',$,*,.T.);
ENDSEC;
`

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	ix, err := step.BuildIndex([]byte(sampleSTEP))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return New([]byte(sampleSTEP), ix)
}

func TestDecodeByID(t *testing.T) {
	d := newTestDecoder(t)
	e, err := d.DecodeByID(3)
	if err != nil {
		t.Fatalf("DecodeByID: %v", err)
	}
	if e.TypeTag != "IFCWALL" {
		t.Fatalf("expected IFCWALL, got %s", e.TypeTag)
	}
	if len(e.Attrs) != 6 {
		t.Fatalf("expected 6 attributes, got %d: %#v", len(e.Attrs), e.Attrs)
	}
	guid, ok := AsString(e.Attrs[0])
	if !ok || guid != "2O2Fr$t4X7Zf8NOew3FLOH" {
		t.Fatalf("unexpected guid attribute: %v", e.Attrs[0])
	}
	if _, ok := e.Attrs[1].(Ref); !ok {
		t.Fatalf("expected Ref at index 1, got %#v", e.Attrs[1])
	}
	if !IsNull(e.Attrs[3]) {
		t.Fatalf("expected null at index 3, got %#v", e.Attrs[3])
	}
	if _, ok := e.Attrs[4].(DerivedVal); !ok {
		t.Fatalf("expected derived marker at index 4, got %#v", e.Attrs[4])
	}
	enum, ok := e.Attrs[5].(EnumVal)
	if !ok || enum.Symbol != "T" {
		t.Fatalf("expected enum T, got %#v", e.Attrs[5])
	}
}

func TestDecodeCoordinateList(t *testing.T) {
	d := newTestDecoder(t)
	e, err := d.DecodeByID(1)
	if err != nil {
		t.Fatalf("DecodeByID: %v", err)
	}
	coords, ok := AsList(e.Attrs[0])
	if !ok || len(coords) != 3 {
		t.Fatalf("expected 3 coordinates, got %#v", e.Attrs[0])
	}
	x, _ := AsFloat(coords[0])
	if x != 1.0 {
		t.Fatalf("expected x=1.0, got %v", x)
	}
}

func TestResolveRef(t *testing.T) {
	d := newTestDecoder(t)
	wall, err := d.DecodeByID(3)
	if err != nil {
		t.Fatalf("DecodeByID: %v", err)
	}
	pt, ok := d.ResolveRef(wall.Attrs[1])
	if !ok {
		t.Fatal("expected to resolve point reference")
	}
	if pt.TypeTag != "IFCCARTESIANPOINT" {
		t.Fatalf("unexpected resolved type: %s", pt.TypeTag)
	}
}

func TestDecodeCache(t *testing.T) {
	d := newTestDecoder(t)
	e1, err := d.DecodeByID(1)
	if err != nil {
		t.Fatalf("DecodeByID: %v", err)
	}
	e2, err := d.DecodeByID(1)
	if err != nil {
		t.Fatalf("DecodeByID: %v", err)
	}
	if e1.ID != e2.ID || e1.TypeTag != e2.TypeTag {
		t.Fatal("cached decode should match fresh decode")
	}
}

func TestFastFloatTriplesMatchesGeneralPath(t *testing.T) {
	src := []byte(`DATA;
#1=IFCCARTESIANPOINTLIST3D(((1.,2.,3.),(4.,5.,6.),(7.,8.,9.)));
ENDSEC;
`)
	ix, err := step.BuildIndex(src)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	d := New(src, ix)

	fast, err := d.FastFloatTriples(1, 0)
	if err != nil {
		t.Fatalf("FastFloatTriples: %v", err)
	}
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if len(fast) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", fast, want)
	}
	for i := range want {
		if fast[i] != want[i] {
			t.Fatalf("mismatch at %d: got %v want %v", i, fast[i], want[i])
		}
	}
}

func TestFastIndexTriplesDecrements(t *testing.T) {
	src := []byte(`DATA;
#1=IFCTRIANGULATEDFACESET(#2,$,.F.,((1,2,3),(2,3,4)),$);
ENDSEC;
`)
	ix, err := step.BuildIndex(src)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	d := New(src, ix)

	idx, err := d.FastIndexTriples(1, 3)
	if err != nil {
		t.Fatalf("FastIndexTriples: %v", err)
	}
	want := []uint32{0, 1, 2, 1, 2, 3}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("mismatch at %d: got %v want %v", i, idx[i], want[i])
		}
	}
}
