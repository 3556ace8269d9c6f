package llm

import (
	"fmt"
	"strings"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/pkg/utils"
)

const demoNotice = "(Demo mode: the answer service is unavailable, showing the most relevant passages instead.)"

// maxDemoPassages bounds how many retrieved passages a demo answer quotes.
const maxDemoPassages = 3

// demoAnswer synthesizes a degraded answer directly from retrieved chunks.
// It is clearly labeled and quotes the passages so the relevant facts still
// reach the caller without a model.
func demoAnswer(question string, chunks []*models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString(demoNotice)
	b.WriteString("\n\n")

	if len(chunks) == 0 {
		b.WriteString(fmt.Sprintf("No indexed passages were found for: %s", question))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Top passages for: %s\n", question))
	n := len(chunks)
	if n > maxDemoPassages {
		n = maxDemoPassages
	}
	for i := 0; i < n; i++ {
		c := chunks[i].Chunk
		b.WriteString(fmt.Sprintf("\n%d. [Source: %s chunk %d] %s\n",
			i+1, c.DocumentID, c.ChunkIndex, utils.Truncate(c.Content, 500)))
	}
	return b.String()
}
