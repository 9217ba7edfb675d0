package gitlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teratoma-labs/polyglotscan/pkg/identity"
)

func TestParseCoAuthorsFourVariants(t *testing.T) {
	t.Parallel()

	message := "Fix the thing\n\n" +
		"Co-authored-by: Jane <j@x>\n" +
		"Co-authored-by: <k@y>\n" +
		"Co-authored-by: no-email-name\n" +
		"Co-authored-by: bare@mail.com\n"

	got := parseCoAuthors(message)

	require.Len(t, got, 4)
	assert.Equal(t, identity.User{Name: "Jane", Email: "j@x"}, got[0])
	assert.Equal(t, identity.User{Name: "", Email: "k@y"}, got[1])
	assert.Equal(t, identity.User{Name: "no-email-name", Email: ""}, got[2])
	assert.Equal(t, identity.User{Name: "", Email: "bare@mail.com"}, got[3])
}

func TestParseCoAuthorsNoTrailers(t *testing.T) {
	t.Parallel()

	got := parseCoAuthors("just a commit message\nwith a body\n")
	assert.Empty(t, got)
}

func TestParseCoAuthorsIsCaseInsensitiveOnPrefix(t *testing.T) {
	t.Parallel()

	got := parseCoAuthors("CO-AUTHORED-BY: Jane <j@x>\n")
	require.Len(t, got, 1)
	assert.Equal(t, "Jane", got[0].Name)
}

func TestSummaryLineTakesFirstLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Fix the thing", summaryLine("Fix the thing\n\nlonger body here"))
	assert.Equal(t, "Single line", summaryLine("Single line"))
}
