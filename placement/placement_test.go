package placement

import (
	"fmt"
	"testing"

	"github.com/ifcgeom/corepipe/decode"
	"github.com/ifcgeom/corepipe/step"
)

func decoderFor(t *testing.T, src string) *decode.Decoder {
	t.Helper()
	ix, err := step.BuildIndex([]byte(src))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return decode.New([]byte(src), ix)
}

func TestIdentityPlacement(t *testing.T) {
	src := `DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);
ENDSEC;
`
	dec := decoderFor(t, src)
	r := NewResolver(dec)
	m := r.Transform(3)
	want := Identity()
	if m != want {
		t.Fatalf("expected identity, got %v", m)
	}
}

func TestTranslationPlacement(t *testing.T) {
	src := `DATA;
#1=IFCCARTESIANPOINT((5.,10.,15.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);
ENDSEC;
`
	dec := decoderFor(t, src)
	r := NewResolver(dec)
	m := r.Transform(3)
	x, y, z := m.Translation()
	if x != 5 || y != 10 || z != 15 {
		t.Fatalf("unexpected translation: %v %v %v", x, y, z)
	}
}

func TestNestedPlacementComposition(t *testing.T) {
	src := `DATA;
#1=IFCCARTESIANPOINT((1.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);
#4=IFCCARTESIANPOINT((0.,1.,0.));
#5=IFCAXIS2PLACEMENT3D(#4,$,$);
#6=IFCLOCALPLACEMENT(#3,#5);
ENDSEC;
`
	dec := decoderFor(t, src)
	r := NewResolver(dec)
	m := r.Transform(6)
	x, y, z := m.Translation()
	if x != 1 || y != 1 || z != 0 {
		t.Fatalf("expected composed translation (1,1,0), got (%v,%v,%v)", x, y, z)
	}
}

// buildPlacementChain constructs N nested local placements each translated
// by (1,0,0) and returns the STEP source plus the id of the deepest one.
func buildPlacementChain(n int) (string, int64) {
	src := "DATA;\n"
	var parent int64
	for i := 1; i <= n; i++ {
		ptID := int64(i)*3 - 2
		axisID := ptID + 1
		placementID := ptID + 2
		src += fmt.Sprintf("#%d=IFCCARTESIANPOINT((1.,0.,0.));\n", ptID)
		src += fmt.Sprintf("#%d=IFCAXIS2PLACEMENT3D(#%d,$,$);\n", axisID, ptID)
		if parent == 0 {
			src += fmt.Sprintf("#%d=IFCLOCALPLACEMENT($,#%d);\n", placementID, axisID)
		} else {
			src += fmt.Sprintf("#%d=IFCLOCALPLACEMENT(#%d,#%d);\n", placementID, parent, axisID)
		}
		parent = placementID
	}
	src += "ENDSEC;\n"
	return src, parent
}

func TestPlacementDepthWithinBound(t *testing.T) {
	src, deepest := buildPlacementChain(100)
	dec := decoderFor(t, src)
	r := NewResolver(dec)
	m := r.Transform(deepest)
	x, _, _ := m.Translation()
	if x != 100 {
		t.Fatalf("expected x=100 after 100 chained +1 translations, got %v", x)
	}
	if len(r.Diagnostics()) != 0 {
		t.Fatalf("expected no diagnostics within bound, got %v", r.Diagnostics())
	}
}

func TestPlacementDepthExceeded(t *testing.T) {
	src, deepest := buildPlacementChain(150)
	dec := decoderFor(t, src)
	r := NewResolver(dec)
	m := r.Transform(deepest)
	if m != Identity() {
		t.Fatalf("expected identity when depth exceeded, got %v", m)
	}
	if len(r.Diagnostics()) == 0 {
		t.Fatal("expected a diagnostic when depth bound is exceeded")
	}
}
