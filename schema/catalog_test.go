package schema

import "testing"

func TestHasGeometryByName(t *testing.T) {
	c := Default()
	if !c.HasGeometryByName("IFCWALL") {
		t.Fatal("expected IFCWALL to have geometry")
	}
	if c.HasGeometryByName("IFCRELVOIDSELEMENT") {
		t.Fatal("relationship type should not have geometry")
	}
}

func TestGeometryCategoryOf(t *testing.T) {
	c := Default()
	if c.GeometryCategoryOf("IFCEXTRUDEDAREASOLID") != GeometrySweptSolid {
		t.Fatal("expected swept solid category")
	}
	if c.GeometryCategoryOf("IFCUNKNOWNTHING") != GeometryUnknown {
		t.Fatal("expected unknown category for unrecognized tag")
	}
}

func TestPriorityOf(t *testing.T) {
	c := Default()
	if c.PriorityOf("IFCWALL") != PrioritySimple {
		t.Fatal("expected wall to be simple priority")
	}
	if c.PriorityOf("IFCFURNISHINGELEMENT") != PriorityComplex {
		t.Fatal("expected furnishing to be complex priority")
	}
	if c.PriorityOf("IFCSOMETHINGNEW") != PriorityMedium {
		t.Fatal("expected unknown tag to default to medium priority")
	}
}

func TestDefaultColorFallback(t *testing.T) {
	c := Default()
	rgba := c.DefaultColorOf("IFCTOTALLYUNKNOWN")
	if rgba.A != 1.0 {
		t.Fatalf("expected opaque fallback color, got %v", rgba)
	}
}
