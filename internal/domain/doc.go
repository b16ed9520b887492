// Package domain models bathing-water quality ("balneabilidade") bulletin data
// published by SEMA/MA and implements the extraction and consolidation core.
//
// # Data Source
//
// Bulletins ("laudos") are periodic PDF documents listing monitored collection
// stations along the coast. The documents carry no fixed schema: field order,
// labels, and whitespace drift between publications, so extraction is a
// layered cascade of heuristics over the page text rather than a single
// parser. Each document is consumed as two views of the same text: the
// line-oriented join of its pages, and a whitespace-collapsed "flat" view for
// patterns that span line breaks.
//
// # Bulletin Conventions
//
// Station codes:
//
//	"P" followed by 1-3 digits, e.g. "P19". Uppercased and used as the
//	primary key of the whole system.
//
// Status tokens:
//
//	"PRÓPRIO" (fit for bathing) and "IMPRÓPRIO" (unfit), with and without
//	accents, sometimes quoted, occasionally with OCR damage ("IMPRPRIO").
//	Canonicalization folds accents and checks IMPROPRIO before PROPRIO
//	because the former contains the latter as a substring. Unrecognized
//	non-empty tokens pass through uppercased; empty input becomes
//	"DESCONHECIDO". See [CanonicalizeStatus].
//
// Dates:
//
//	Collection dates are "DD/MM/YYYY" and are converted to ISO "YYYY-MM-DD"
//	so plain string comparison sorts them chronologically. Unparseable input
//	passes through unchanged and never contributes a history sample. The
//	document-level report period ("período de X a Y") supplies a fallback
//	collection date when a station block has no explicit one.
//
// # Heuristic Cascade
//
// Three strategies, in order: "block split" (line-oriented blocks delimited by
// station codes), "linear block" (a single contiguous labeled pattern over the
// flat text), and "loose row" (a permissive fallback that runs only when the
// first two produced nothing for the whole document). A history-mining pass
// then scans a bounded window after each found code for "DD/MM/YYYY - STATUS"
// pairs, recovering the historical series some bulletins print next to the
// current entry. See [ExtractCandidates].
//
// # Consolidation Authority Model
//
// Extracted text is tentative: [Aggregate] applies first-non-empty-wins to
// descriptive fields and set semantics to history. The curated geocode table
// is ground truth: [MergeGeocodes] overwrites descriptive fields whenever the
// table provides them. The two policies are separate operations; do not
// unify them.
package domain
