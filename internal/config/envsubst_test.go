package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("ANISTRM_TEST_SET", "hello")
	t.Setenv("ANISTRM_TEST_EMPTY", "")

	tests := []struct {
		name        string
		in          string
		want        string
		wantMissing []string
	}{
		{"simple", "value = ${ANISTRM_TEST_SET}", "value = hello", nil},
		{"missing left unchanged", "v = ${ANISTRM_TEST_NONEXISTENT_12345}", "v = ${ANISTRM_TEST_NONEXISTENT_12345}", []string{"ANISTRM_TEST_NONEXISTENT_12345"}},
		{"empty is set", "v = '${ANISTRM_TEST_EMPTY}'", "v = ''", nil},
		{"default when unset", "v = ${ANISTRM_TEST_NONEXISTENT_12345:-fallback}", "v = fallback", nil},
		{"default when empty", "v = ${ANISTRM_TEST_EMPTY:-fallback}", "v = fallback", nil},
		{"default ignored when set", "v = ${ANISTRM_TEST_SET:-fallback}", "v = hello", nil},
		{"empty default", "v = '${ANISTRM_TEST_NONEXISTENT_12345:-}'", "v = ''", nil},
		{"deduplicated and sorted", "${ANISTRM_TEST_ZZ_12345} ${ANISTRM_TEST_AA_12345} ${ANISTRM_TEST_ZZ_12345}",
			"${ANISTRM_TEST_ZZ_12345} ${ANISTRM_TEST_AA_12345} ${ANISTRM_TEST_ZZ_12345}",
			[]string{"ANISTRM_TEST_AA_12345", "ANISTRM_TEST_ZZ_12345"}},
		{"not a reference", "v = $HOME and ${}", "v = $HOME and ${}", nil},
		{"comment line ignored", "# set ${ANISTRM_TEST_NONEXISTENT_12345}\nv = 1", "# set ${ANISTRM_TEST_NONEXISTENT_12345}\nv = 1", nil},
		{"trailing comment ignored", "v = '${ANISTRM_TEST_SET}' # or ${ANISTRM_TEST_NONEXISTENT_12345}", "v = 'hello' # or ${ANISTRM_TEST_NONEXISTENT_12345}", nil},
		{"hash inside string", `v = "a#${ANISTRM_TEST_SET}"`, `v = "a#hello"`, nil},
		{"hash inside literal string", `v = 'a#${ANISTRM_TEST_SET}'`, `v = 'a#hello'`, nil},
		{"escaped quote in string", `v = "a\"#${ANISTRM_TEST_SET}" # ${X_12345}`, `v = "a\"#hello" # ${X_12345}`, nil},
		{"multiple lines", "a = '${ANISTRM_TEST_SET}'\n# ${ANISTRM_TEST_ZZ_12345}\nb = '${ANISTRM_TEST_AA_12345}'",
			"a = 'hello'\n# ${ANISTRM_TEST_ZZ_12345}\nb = '${ANISTRM_TEST_AA_12345}'",
			[]string{"ANISTRM_TEST_AA_12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}
