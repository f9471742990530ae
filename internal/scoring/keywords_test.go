package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("We need C++, C# and Node.js. Go experience with AWS; 5+ years.")

	assert.Equal(t, []string{"need", "c++", "c#", "node.js", "go", "aws"}, got)
}

func TestExtractKeywords_DedupAndOrder(t *testing.T) {
	got := ExtractKeywords("Python SQL python Docker sql Kubernetes")

	assert.Equal(t, []string{"python", "sql", "docker", "kubernetes"}, got)
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	jd := "Senior backend engineer: Go, PostgreSQL, Kafka, gRPC. Kubernetes on AWS."
	first := ExtractKeywords(jd)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExtractKeywords(jd))
	}
}

func TestExtractKeywords_HTML(t *testing.T) {
	got := ExtractKeywords("<ul><li>Terraform</li><li>Ansible</li></ul><script>tracker()</script>")

	assert.Equal(t, []string{"terraform", "ansible"}, got)
}

func TestExtractKeywords_MixedBlocks(t *testing.T) {
	got := ExtractKeywords("<div>Kubernetes Terraform</div><p>Python developer</p>")

	assert.Equal(t, []string{"kubernetes", "terraform", "python", "developer"}, got)
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.NotNil(t, ExtractKeywords("the and of"))
}

func TestTopKeywords(t *testing.T) {
	got := TopKeywords("go sql go docker sql go rust", 3)

	assert.Equal(t, []KeywordCount{
		{Keyword: "go", Count: 3},
		{Keyword: "sql", Count: 2},
		{Keyword: "docker", Count: 1},
	}, got)

	assert.Len(t, TopKeywords("go sql go docker sql go rust", 0), 4)
}
