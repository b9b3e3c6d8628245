package router

import "testing"

func TestColorOfResolvesStyledItem(t *testing.T) {
	src := `DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);

#10=IFCCARTESIANPOINT((0.,0.));
#11=IFCCARTESIANPOINT((4.,0.));
#12=IFCCARTESIANPOINT((4.,1.));
#13=IFCCARTESIANPOINT((0.,1.));
#14=IFCPOLYLINE((#10,#11,#12,#13,#10));
#15=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#14);
#16=IFCDIRECTION((0.,0.,1.));
#17=IFCEXTRUDEDAREASOLID(#15,$,#16,3.);
#18=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#17));
#19=IFCPRODUCTDEFINITIONSHAPE($,$,(#18));
#20=IFCWALLSTANDARDCASE('guid-host',$,$,$,$,#3,#19,$);

#30=IFCCOLOURRGB($,1.,0.,0.);
#31=IFCSURFACESTYLERENDERING(#30,0.25,$,$,$,$,$,$,$);
#32=IFCSURFACESTYLE($,.BOTH.,(#31));
#33=IFCSTYLEDITEM(#17,(#32),$);
ENDSEC;
`
	r := newTestRouter(t, src)
	color := r.ColorOf(20)
	if color.R != 1 || color.G != 0 || color.B != 0 {
		t.Fatalf("expected red, got %+v", color)
	}
	if color.A < 0.74 || color.A > 0.76 {
		t.Fatalf("expected alpha ~0.75 (1 - transparency 0.25), got %v", color.A)
	}
}

func TestColorOfFallsBackToSchemaDefault(t *testing.T) {
	r := newTestRouter(t, wallSrc)
	color := r.ColorOf(20)
	if color.A == 0 {
		t.Fatal("expected a non-zero-alpha default color")
	}
}

func TestColorOfFollowsMappedItem(t *testing.T) {
	src := `DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);

#10=IFCCARTESIANPOINT((0.,0.));
#11=IFCCARTESIANPOINT((4.,0.));
#12=IFCCARTESIANPOINT((4.,1.));
#13=IFCCARTESIANPOINT((0.,1.));
#14=IFCPOLYLINE((#10,#11,#12,#13,#10));
#15=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#14);
#16=IFCDIRECTION((0.,0.,1.));
#17=IFCEXTRUDEDAREASOLID(#15,$,#16,3.);
#18=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#17));

#40=IFCCARTESIANPOINT((0.,0.,0.));
#41=IFCAXIS2PLACEMENT3D(#40,$,$);
#42=IFCREPRESENTATIONMAP(#41,#18);

#43=IFCCARTESIANPOINT((0.,0.,0.));
#44=IFCDIRECTION((1.,0.,0.));
#45=IFCDIRECTION((0.,0.,1.));
#46=IFCCARTESIANTRANSFORMATIONOPERATOR3D(#44,#45,#43,$,$);
#47=IFCMAPPEDITEM(#42,#46);
#48=IFCSHAPEREPRESENTATION($,'Body','MappedRepresentation',(#47));
#49=IFCPRODUCTDEFINITIONSHAPE($,$,(#48));
#50=IFCWALLSTANDARDCASE('guid-host',$,$,$,$,#3,#49,$);

#60=IFCCOLOURRGB($,0.,1.,0.);
#61=IFCSURFACESTYLERENDERING(#60,0.,$,$,$,$,$,$,$);
#62=IFCSURFACESTYLE($,.BOTH.,(#61));
#63=IFCSTYLEDITEM(#17,(#62),$);
ENDSEC;
`
	r := newTestRouter(t, src)
	color := r.ColorOf(50)
	if color.R != 0 || color.G != 1 || color.B != 0 {
		t.Fatalf("expected green resolved through the mapped item, got %+v", color)
	}
}
