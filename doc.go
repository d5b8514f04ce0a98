// Package contentline implements a streaming codec for the "content-line"
// text format shared by RFC 5545 (iCalendar) and RFC 6350 (vCard), including
// the RFC 6868 parameter-value escaping rules.
//
// Decoding reads a byte stream and assembles it into a tree of named
// Components holding Properties and their Parameters. Encoding serializes
// such a tree back to folded, escaped bytes. The package performs no
// semantic interpretation of property values (no date/time, no recurrence
// rules, no validation beyond the legality of names): it is a syntactic
// codec, not a calendar or vCard validator.
package contentline
