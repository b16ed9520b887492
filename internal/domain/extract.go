package domain

import (
	"regexp"
	"strings"
)

// Heuristic names, used as metric labels and in logs.
const (
	HeuristicBlockSplit    = "block_split"
	HeuristicLinearBlock   = "linear_block"
	HeuristicLooseRow      = "loose_row"
	HeuristicHistoryMining = "history_mining"
)

// historyWindow is how far past a station code the history-mining pass scans
// for adjacent "DD/MM/YYYY - STATUS" pairs. Measured in characters, not
// bytes; bulletin text is accented UTF-8.
const historyWindow = 300

var (
	// stationCodeRe matches a station code token: "P" plus 1-3 digits.
	stationCodeRe = regexp.MustCompile(`P\d{1,3}`)

	// reportPeriodRe captures the bulletin's report period from the flat
	// text, e.g. "período de 21/07/2025 a 21/08/2025". The end date is the
	// fallback collection date for blocks without an explicit one.
	reportPeriodRe = regexp.MustCompile(`(?i)per[íi]odo de (\d{2}/\d{2}/\d{4}) a (\d{2}/\d{2}/\d{4})`)

	beachLineRe = regexp.MustCompile(`(?im)\bpraia\s*:?\s*(.+)$`)

	// referenceLineRes accepts the label spellings seen across bulletins,
	// most specific first.
	referenceLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)ponto\s+de\s+refer[êe]ncia\s*:?\s*(.+)$`),
		regexp.MustCompile(`(?im)refer[êe]ncia\s*:?\s*(.+)$`),
		regexp.MustCompile(`(?im)\bref\.?\s*:?\s*(.+)$`),
	}

	collectionDateRe = regexp.MustCompile(`(?i)data\s+da\s+coleta\s*:?\s*(\d{2}/\d{2}/\d{4})`)

	// statusTokenRe includes the accent-less forms and the "IMPRPRIO" OCR
	// artifact seen in older bulletins.
	statusTokenRe = regexp.MustCompile(`(?i)\b(IMPR[ÓO]PRIO|PR[ÓO]PRIO|IMPRPRIO)\b`)

	// linearBlockRe matches a whole labeled record in the flat text:
	// code, "Praia:", a reference-style label, an optional collection date,
	// then "Status:". Recovers records whose line breaks were collapsed by
	// the upstream page-text extractor. Annotations may sit between the
	// date and "Status:"; that gap excludes "s" and digits and only opens
	// after a matched date, so it cannot swallow the date or the reference.
	linearBlockRe = regexp.MustCompile(`(?i)(P\d{1,3})[^P]*?Praia:\s*(.*?)\s*(?:Ponto\s+de\s+refer[êe]ncia|Refer[êe]ncia|Ref\.):\s*(.*?)\s*(?:(?:Data\s+da\s+coleta:\s*)?(\d{2}/\d{2}/\d{4})[^S0-9]*?)?\s*Status:\s*([A-ZÇÃÓÍÉÊÀÂÕÚ]+)`)

	// looseRowRe is the permissive fallback: code, a short run of letters as
	// the beach name, a reference-style label, optional date, and a status
	// token within a bounded lookahead.
	looseRowRe = regexp.MustCompile(`(?i)(P\d{1,3}).{0,80}?([A-Za-zÀ-ÿ' \-]+).{0,200}?\b(?:Ponto\s+de\s+refer[êe]ncia|Refer[êe]ncia|Ref\.)\s*:?\s*(.+?)\s+(?:Data\s+da\s+coleta\s*:?\s*(\d{2}/\d{2}/\d{4}))?.{0,80}?\b(PR[ÓO]PRIO|IMPR[ÓO]PRIO)\b`)

	// historyPairRe matches one mined history entry: a date and a status
	// separated by a dash-like character.
	historyPairRe = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s*[-–—]\s*(PR[ÓO]PRIO|IMPR[ÓO]PRIO)`)
)

// heuristic is one extraction strategy: a pure function from a document to
// zero or more candidates, independently testable and substitutable.
type heuristic struct {
	name    string
	extract func(Document) []CandidateRecord
}

// structuredHeuristics always run; their outputs accumulate and duplicates
// are resolved later at aggregation, not here. The two target different
// layout shapes (line-oriented vs. flattened), so neither gates the other.
var structuredHeuristics = []heuristic{
	{name: HeuristicBlockSplit, extract: extractBlockSplit},
	{name: HeuristicLinearBlock, extract: extractLinearBlocks},
}

// looseRowHeuristic carries a higher false-positive risk and is gated off
// whenever a structured heuristic already matched.
var looseRowHeuristic = heuristic{name: HeuristicLooseRow, extract: extractLooseRows}

// ExtractResult carries the candidates from one document and per-heuristic
// counts for observability.
type ExtractResult struct {
	Candidates []CandidateRecord
	Counts     map[string]int
}

// ExtractCandidates runs the heuristic cascade over one document, then the
// history-mining pass over whatever the cascade found. An empty result is a
// normal condition (layout drift), not an error.
func ExtractCandidates(doc Document) ExtractResult {
	res := ExtractResult{Counts: make(map[string]int)}
	for _, h := range structuredHeuristics {
		found := h.extract(doc)
		res.Counts[h.name] = len(found)
		res.Candidates = append(res.Candidates, found...)
	}
	if runLooseRowFallback(res.Candidates) {
		found := looseRowHeuristic.extract(doc)
		res.Counts[looseRowHeuristic.name] = len(found)
		res.Candidates = append(res.Candidates, found...)
	}
	mined := mineHistory(doc, res.Candidates)
	res.Counts[HeuristicHistoryMining] = len(mined)
	res.Candidates = append(res.Candidates, mined...)
	return res
}

// runLooseRowFallback is the cascade's gating policy: the loose-row heuristic
// runs only when the structured heuristics together produced zero candidates.
func runLooseRowFallback(structured []CandidateRecord) bool {
	return len(structured) == 0
}

// extractBlockSplit splits the line-oriented text at every station code and
// searches each following chunk line-by-line for labeled beach, reference,
// and collection-date fields plus a standalone status token. A block without
// a status token emits nothing.
func extractBlockSplit(doc Document) []CandidateRecord {
	locs := stationCodeRe.FindAllStringIndex(doc.LineText, -1)
	if len(locs) == 0 {
		return nil
	}
	fallbackDate := reportEndDate(doc.FlatText)

	var out []CandidateRecord
	for i, loc := range locs {
		end := len(doc.LineText)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := strings.TrimSpace(doc.LineText[loc[1]:end])
		if block == "" {
			continue
		}
		status := statusTokenRe.FindString(block)
		if status == "" {
			continue
		}
		date := findField(block, collectionDateRe)
		if date == "" {
			date = fallbackDate
		}
		out = append(out, CandidateRecord{
			Code:      strings.ToUpper(doc.LineText[loc[0]:loc[1]]),
			Beach:     findField(block, beachLineRe),
			Reference: findFirstField(block, referenceLineRes),
			Status:    status,
			Date:      date,
			SourceURL: doc.SourceURL,
		})
	}
	return out
}

// extractLinearBlocks matches whole labeled records across the flat text.
func extractLinearBlocks(doc Document) []CandidateRecord {
	fallbackDate := reportEndDate(doc.FlatText)

	var out []CandidateRecord
	for _, m := range linearBlockRe.FindAllStringSubmatch(doc.FlatText, -1) {
		date := m[4]
		if date == "" {
			date = fallbackDate
		}
		out = append(out, CandidateRecord{
			Code:      strings.ToUpper(m[1]),
			Beach:     strings.Trim(m[2], " :-"),
			Reference: strings.Trim(m[3], " :-"),
			Status:    m[5],
			Date:      date,
			SourceURL: doc.SourceURL,
		})
	}
	return out
}

// extractLooseRows is the last-resort row pattern over the flat text.
func extractLooseRows(doc Document) []CandidateRecord {
	fallbackDate := reportEndDate(doc.FlatText)

	var out []CandidateRecord
	for _, m := range looseRowRe.FindAllStringSubmatch(doc.FlatText, -1) {
		date := m[4]
		if date == "" {
			date = fallbackDate
		}
		out = append(out, CandidateRecord{
			Code:      strings.ToUpper(m[1]),
			Beach:     strings.TrimSpace(m[2]),
			Reference: strings.TrimSpace(m[3]),
			Status:    m[5],
			Date:      date,
			SourceURL: doc.SourceURL,
		})
	}
	return out
}

// mineHistory scans a fixed window after each distinct anchor code for
// "date - status" pairs, emitting one extra candidate per pair that inherits
// the anchor's beach and reference.
func mineHistory(doc Document, anchors []CandidateRecord) []CandidateRecord {
	var out []CandidateRecord
	seen := make(map[string]bool)
	for _, anchor := range anchors {
		if anchor.Code == "" || seen[anchor.Code] {
			continue
		}
		seen[anchor.Code] = true

		pos := strings.Index(doc.FlatText, anchor.Code)
		if pos < 0 {
			continue
		}
		window := firstRunes(doc.FlatText[pos+len(anchor.Code):], historyWindow)
		for _, m := range historyPairRe.FindAllStringSubmatch(window, -1) {
			out = append(out, CandidateRecord{
				Code:      anchor.Code,
				Beach:     anchor.Beach,
				Reference: anchor.Reference,
				Status:    m[2],
				Date:      m[1],
				SourceURL: anchor.SourceURL,
			})
		}
	}
	return out
}

// firstRunes returns at most the first n runes of s.
func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func reportEndDate(flat string) string {
	m := reportPeriodRe.FindStringSubmatch(flat)
	if m == nil {
		return ""
	}
	return m[2]
}

func findField(block string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], " :-")
}

func findFirstField(block string, res []*regexp.Regexp) string {
	for _, re := range res {
		if v := findField(block, re); v != "" {
			return v
		}
	}
	return ""
}
