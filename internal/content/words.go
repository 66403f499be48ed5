package content

import "strings"

// CountWords counts whitespace-separated, non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// SelectedWordCount sums the word counts of selected blocks. It always reads
// the block's current content, so edits are reflected immediately.
func SelectedWordCount(blocks []Block, sel Selection) int {
	total := 0
	for _, b := range blocks {
		if sel.Has(b.ID) {
			total += CountWords(b.Content)
		}
	}
	return total
}

// SelectedBlocks returns the selected blocks in block-list order.
func SelectedBlocks(blocks []Block, sel Selection) []Block {
	var out []Block
	for _, b := range blocks {
		if sel.Has(b.ID) {
			out = append(out, b)
		}
	}
	return out
}
