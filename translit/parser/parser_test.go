package parser

import "testing"

func TestParseFull(t *testing.T) {
	const source = `
	:: [a-z\]] ; :: [b-z] Latin/BGN ;
	:: Source-Target/Variant () ;::([b-z]Target-Source/Variant) ;
	:: [a-z] Any ([b-z] Target-Source/Variant);

	$my_var = an arbitrary section ',' some quantifiers *+? 'and other variables: $var' $var  ;
	$innerMinus = '-' ;
	$minus = $innerMinus ;
	$good_set = [a $minus z] ;

	^ (start) { key ' key '+ $good_set } > $102 }  post\-context$;
	# contexts are optional
	target < source ;
	# contexts can be empty
	{ 'source-or-target' } <> { 'target-or-source' } ;

	(nested (sections)+ are () so fun) > ;

	. > ;

	:: ([{Inverse]-filter}]) ;
	`

	if _, err := Parse(source); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
}

func TestParseConversionRulesOK(t *testing.T) {
	sources := []string{
		`a > b ;`,
		`a < b ;`,
		`a <> b ;`,
		`a → b ;`,
		`a ← b ;`,
		`a ↔ b ;`,
		`a \> > b ;`,
		`a \→ > b ;`,
		`{ a > b ;`,
		`{ a } > b ;`,
		`{ a } > { b ;`,
		`{ a } > { b } ;`,
		`^ pre [a-z] { a } post [$] $ > ^ [$] pre { b [b-z] } post $ ;`,
		`[äöü] > ;`,
		`([äöü]) > &Remove($1) ;`,
		`[äöü] { ([äöü]+) > &Remove($1) ;`,
	}
	for _, src := range sources {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseConversionRulesErr(t *testing.T) {
	sources := []string{
		`a > > b ;`,
		`a >< b ;`,
		`(a > b) > b ;`,
		`a \← b ;`,
		`a ↔ { b > } ;`,
		`a > b`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseVariableRulesOK(t *testing.T) {
	sources := []string{
		` $my_var = [a-z] ;`,
		`$my_var = äüöÜ ;`,
		`$my_var = [a-z] literal ; $other_var = [A-Z] [b-z];`,
		`$my_var = [a-z] ; $other_var = [A-Z] [b-z];`,
		`$my_var = [a-z] ; $other_var = $my_var + $2222;`,
		`$my_var = [a-z] ; $other_var = $my_var \+\ \$2222 \\ 'hello\';`,
		`
		$innerMinus = '-' ;
		$minus = $innerMinus ;
		$good_set = [a $minus z] ;
		`,
	}
	for _, src := range sources {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseVariableRulesErr(t *testing.T) {
	sources := []string{
		` $ my_var = a ;`,
		` $my_var = a_2 ;`,
		`$my_var 2 = [a-z] literal ;`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseGlobalFiltersOK(t *testing.T) {
	sources := []string{
		`:: [^\[$] ;`,
		`:: [^\[{[}$] ;`,
		`:: [^\[{]}$] ;`,
		`:: [^\[{]\}]}$] ;`,
		`:: ([^\[$]) ;`,
		`:: ( [^\[$] ) ;`,
		`:: [^[a-z[]][]] ;`,
		`:: [^[a-z\[\]]\]] ;`,
		`:: [^\]] ;`,
	}
	for _, src := range sources {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseGlobalFiltersErr(t *testing.T) {
	sources := []string{
		`:: [^\[$ ;`,
		`:: [^[$] ;`,
		`:: [^\[$]) ;`,
		`:: ( [^\[$]  ;`,
		`:: [^[a-z[]][]] [] ;`,
		`:: [^[a-z\[\]]\]] ([a-z]);`,
		`:: ( [] [] ) ;`,
		`:: () [] ;`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseCursorsOK(t *testing.T) {
	sources := []string{
		`a > b | c ;`,
		`a > | b ;`,
		`a > b |@@@ c ;`,
		`a > @@@| b ;`,
		`a > |@ ;`,
	}
	for _, src := range sources {
		rules, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", src, err)
		}
		conv, ok := rules[0].(Conversion)
		if !ok {
			t.Fatalf("Parse(%q): want Conversion, got %T", src, rules[0])
		}
		found := false
		for _, elt := range conv.Target.Key {
			if _, ok := elt.(Cursor); ok {
				found = true
			}
		}
		if !found {
			t.Errorf("Parse(%q): expected a Cursor element in the target key", src)
		}
	}
}

func TestParseCursorsErr(t *testing.T) {
	sources := []string{
		`a > @ b ;`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseFunctionCallsOK(t *testing.T) {
	sources := []string{
		`$fn = & Any-Any/Variant ($var literal 'quoted literal' $1) ;`,
		`$fn = &[a-z] Any-Any/Variant ($var literal 'quoted literal' $1) ;`,
		`$fn = &[a-z]Any-Any/Variant ($var literal 'quoted literal' $1) ;`,
		`$fn = &[a-z]Any/Variant ($var literal 'quoted literal' $1) ;`,
		`$fn = &Any/Variant ($var literal 'quoted literal' $1) ;`,
		`$fn = &[a-z]Any ($var literal 'quoted literal' $1) ;`,
		`$fn = &Any($var literal 'quoted literal' $1) ;`,
	}
	for _, src := range sources {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseFunctionCallsErr(t *testing.T) {
	sources := []string{
		`$fn = &[a-z]($var literal 'quoted literal' $1) ;`,
		`$fn = &[a-z] ($var literal 'quoted literal' $1) ;`,
		`$fn = &($var literal 'quoted literal' $1) ;`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseTransformRulesOK(t *testing.T) {
	sources := []string{
		":: NFD; :: NFKC;",
		":: Latin ;",
		":: any - Latin;",
		":: any - Latin/bgn;",
		":: any - Latin/bgn ();",
		":: any - Latin/bgn ([a-z] a-z);",
		":: ([a-z] a-z);",
		":: (a-z);",
		":: (a-z / variant);",
		":: [a-z] latin/variant (a-z / variant);",
		":: [a-z] latin/variant (a-z / variant) ;",
		":: [a-z] latin (  );",
		":: [a-z] latin ;",
		"::[];",
	}
	for _, src := range sources {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseTransformRulesErr(t *testing.T) {
	sources := []string{
		`:: a a ;`,
		`:: (a a) ;`,
		`:: a - z - b ;`,
		`:: ( a - z - b) ;`,
		`:: [] ( a - z) ;`,
		`:: a-z ( [] ) ;`,
		`:: Latin-ASCII/BGN Arab-Greek/UNGEGN ;`,
		`:: (Latin-ASCII/BGN Arab-Greek/UNGEGN) ;`,
	}
	for _, src := range sources {
		if rules, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded: %v", src, rules)
		}
	}
}

func TestParseBasicIdDefaultsSourceToAny(t *testing.T) {
	rules, err := Parse(":: Latin ;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	tr, ok := rules[0].(Transform)
	if !ok {
		t.Fatalf("expected Transform, got %T", rules[0])
	}
	if tr.Forward.BasicId.Source != "Any" || tr.Forward.BasicId.Target != "Latin" {
		t.Errorf("BasicId = %+v, want Source=Any Target=Latin", tr.Forward.BasicId)
	}
}

func TestParseVariableDefinitionRoundTrip(t *testing.T) {
	rules, err := Parse(`$x = a b c ;`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	vd, ok := rules[0].(VariableDefinition)
	if !ok {
		t.Fatalf("expected VariableDefinition, got %T", rules[0])
	}
	if vd.Name != "x" {
		t.Errorf("Name = %q, want x", vd.Name)
	}
	if len(vd.Section) != 1 {
		t.Fatalf("expected single literal element, got %d", len(vd.Section))
	}
	lit, ok := vd.Section[0].(Literal)
	if !ok || lit.Text != "abc" {
		t.Errorf("Section[0] = %+v, want Literal{abc}", vd.Section[0])
	}
}

func TestParseDuplicateVariableFails(t *testing.T) {
	_, err := Parse(`$x = a ; $x = b ;`)
	if err == nil {
		t.Fatal("expected duplicate-variable error")
	}
	var perr *Error
	if !asParserError(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Kind != DuplicateVariable {
		t.Errorf("Kind = %v, want DuplicateVariable", perr.Kind)
	}
}

func asParserError(err error, target **Error) bool {
	if pe, ok := err.(*Error); ok {
		*target = pe
		return true
	}
	return false
}

func TestUnicodeSetNegationAndRange(t *testing.T) {
	set, err := parseUnicodeSetPattern(`[^a-z]`)
	if err != nil {
		t.Fatalf("parseUnicodeSetPattern: %v", err)
	}
	if set.Contains('m') {
		t.Error("negated [a-z] should not contain 'm'")
	}
	if !set.Contains('M') {
		t.Error("negated [a-z] should contain 'M'")
	}
}

func TestUnicodeSetPosixProperty(t *testing.T) {
	set, err := parseUnicodeSetPattern(`[:Lu:]`)
	if err != nil {
		t.Fatalf("parseUnicodeSetPattern: %v", err)
	}
	if !set.Contains('A') {
		t.Error("[:Lu:] should contain 'A'")
	}
	if set.Contains('a') {
		t.Error("[:Lu:] should not contain 'a'")
	}
}

func TestUnicodeSetDotPattern(t *testing.T) {
	set, err := parseUnicodeSetPattern(dotSetPattern)
	if err != nil {
		t.Fatalf("parseUnicodeSetPattern: %v", err)
	}
	if set.Contains('\n') || set.Contains('\r') {
		t.Error("dot set must exclude \\n and \\r")
	}
	if !set.Contains('a') {
		t.Error("dot set should contain ordinary characters")
	}
}
