package services

// EstimateTokens approximates the token count of text for context
// budgeting. Thai script packs roughly two characters per token with
// the multilingual tokenizers used here; other scripts average four.
// Both divisions round up so the estimate never undercounts — it is
// better to stop one chunk early than to overflow the model's context
// window.
func EstimateTokens(text string) int {
	var thai, other int
	for _, r := range text {
		if r >= 0x0E00 && r <= 0x0E7F {
			thai++
		} else {
			other++
		}
	}
	return ceilDiv(thai, 2) + ceilDiv(other, 4)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
