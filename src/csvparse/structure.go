package csvparse

import "strings"

// Structure describes the detected shape of a CSV export: the delimiter,
// the header line (if any) and where data rows begin. Detection is
// advisory; it backs the import preview, while the importer itself relies
// on the embedded bank-format heuristics in Parse.
type Structure struct {
	Delimiter   rune
	HeaderIndex int // -1 when no header line was found
	DataIndex   int
	Columns     []string
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DetectStructure infers the delimiter and header position from raw file
// text. It samples up to 10 non-blank lines, prefers a delimiter that
// splits every sample line into the same number of fields, and falls back
// to the candidate with the highest raw character count.
func DetectStructure(content string) Structure {
	lines := splitLines(content)

	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}

	var sample []string
	var sampleIdx []int
	for i := first; i < len(lines) && len(sample) < 10; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		sample = append(sample, lines[i])
		sampleIdx = append(sampleIdx, i)
	}

	st := Structure{Delimiter: ';', HeaderIndex: -1, DataIndex: first}
	if len(sample) == 0 {
		return st
	}
	st.Delimiter = sniffDelimiter(sample)

	// A line naming both a date and an amount column is the header.
	for n, line := range sample {
		fields := strings.Split(line, string(st.Delimiter))
		hasDate, hasAmount := false, false
		for _, f := range fields {
			low := strings.ToLower(f)
			if strings.Contains(low, "date") {
				hasDate = true
			}
			if strings.Contains(low, "montant") || strings.Contains(low, "amount") {
				hasAmount = true
			}
		}
		if hasDate && hasAmount {
			st.HeaderIndex = sampleIdx[n]
			st.DataIndex = sampleIdx[n] + 1
			st.Columns = trimFields(fields)
			return st
		}
	}

	if looksLikeHeader(sample, st.Delimiter) {
		st.HeaderIndex = sampleIdx[0]
		st.DataIndex = sampleIdx[0] + 1
		st.Columns = trimFields(strings.Split(sample[0], string(st.Delimiter)))
		return st
	}

	return st
}

// sniffDelimiter picks a candidate splitting every sample line into the
// same number of fields; ties go to the higher field count. When no
// candidate is consistent, the one with the most occurrences overall wins.
func sniffDelimiter(sample []string) rune {
	best := ';'
	bestFields := 0
	for _, cand := range delimiterCandidates {
		count := strings.Count(sample[0], string(cand))
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range sample[1:] {
			if strings.Count(line, string(cand)) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestFields {
			best = cand
			bestFields = count
		}
	}
	if bestFields > 0 {
		return best
	}

	total := 0
	for _, cand := range delimiterCandidates {
		count := 0
		for _, line := range sample {
			count += strings.Count(line, string(cand))
		}
		if count > total {
			best = cand
			total = count
		}
	}
	return best
}

// looksLikeHeader guesses whether the first sample line is a header row:
// same field count as the rest, no numeric or date-shaped field of its
// own, while at least one data line has one.
func looksLikeHeader(sample []string, delim rune) bool {
	if len(sample) < 2 {
		return false
	}
	first := strings.Split(sample[0], string(delim))
	for _, line := range sample[1:] {
		if len(strings.Split(line, string(delim))) != len(first) {
			return false
		}
	}
	for _, f := range first {
		if isValueField(f) {
			return false
		}
	}
	for _, line := range sample[1:] {
		for _, f := range strings.Split(line, string(delim)) {
			if isValueField(f) {
				return true
			}
		}
	}
	return false
}

// isValueField reports whether a field looks like data (a number or a
// date) rather than a column title.
func isValueField(f string) bool {
	f = strings.TrimSpace(f)
	if f == "" {
		return false
	}
	if dateRe.MatchString(f) {
		return true
	}
	if _, err := parseAmount(f); err == nil {
		return true
	}
	return false
}

func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

func splitLines(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
