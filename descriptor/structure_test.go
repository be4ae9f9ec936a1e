package descriptor

import (
	"testing"
)

func TestValidateStructureAcceptsCommonNotation(t *testing.T) {
	structures := []string{
		"C",
		"CCO",
		"c1ccccc1",
		"CC(=O)Oc1ccccc1C(=O)O",
		"[C@@H](N)C(=O)O",
		"C/C=C\\C",
		"CC(=O)[O-].[Na+]",
		"C%12CCC%12",
		"N#N",
		"C1=CC2=C(C=C1)C=CC=C2",
	}
	for _, structure := range structures {
		if err := validateStructure(structure); err != nil {
			t.Errorf("expected %s to validate but got: %s", structure, err)
		}
	}
}

func TestValidateStructureDepthTracking(t *testing.T) {
	testCases := []struct {
		caseName  string
		structure string
		expValid  bool
	}{
		{caseName: "nested-parens", structure: "CC(C(C)C)C", expValid: true},
		{caseName: "interleaved", structure: "C([N+](C)C)c1ccccc1", expValid: true},
		{caseName: "too-many-closes", structure: "C(C))", expValid: false},
		{caseName: "bracket-close-first", structure: "C]C[", expValid: false},
	}
	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			err := validateStructure(tc.structure)
			if tc.expValid && err != nil {
				t.Errorf("expected valid but got: %s", err)
			}
			if !tc.expValid && err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
