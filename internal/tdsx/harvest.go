package tdsx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Query is one harvested piece of SQL together with a display label.
// Labels are unique within a run: connections without a caption or name
// fall back to "Connection N", where N is the 1-based position of the
// result among all results of the run.
type Query struct {
	Label string
	SQL   string
}

// elementPredicate reports whether an element has some capability, e.g.
// holds literal SQL text.
type elementPredicate func(*etree.Element) bool

// isTextRelation matches relation elements that carry literal custom SQL
// (type="text") with non-empty text content.
func isTextRelation(el *etree.Element) bool {
	return el.Tag == "relation" &&
		el.SelectAttrValue("type", "") == "text" &&
		strings.TrimSpace(el.Text()) != ""
}

// Harvest walks the manifest depth-first in document order and collects
// every connection that embeds SQL. Two shapes contribute:
//
//   - a connection element with a descendant relation of type "text"
//     (custom SQL); the first such relation wins, a connection never
//     yields more than one custom-SQL result
//   - a named-connection whose inner connection carries a one-time-sql
//     attribute (initial SQL run once on connect)
//
// SQL text is returned verbatim; trimming is only applied for the
// presence check.
func Harvest(root *etree.Element) []Query {
	var queries []Query

	// Federated connections nest further connection elements, so a text
	// relation can be a descendant of more than one connection node.
	// The outermost connection claims it.
	claimed := make(map[*etree.Element]bool)

	walk(root, func(el *etree.Element) {
		switch el.Tag {
		case "connection":
			rel := findDescendant(el, func(d *etree.Element) bool {
				return isTextRelation(d) && !claimed[d]
			})
			if rel == nil {
				return
			}
			claimed[rel] = true
			queries = append(queries, Query{
				Label: connectionLabel(el, len(queries)+1),
				SQL:   rel.Text(),
			})
		case "named-connection":
			inner := findDescendant(el, func(d *etree.Element) bool {
				return d.Tag == "connection"
			})
			if inner == nil {
				return
			}
			sql := inner.SelectAttrValue("one-time-sql", "")
			if strings.TrimSpace(sql) == "" {
				return
			}
			queries = append(queries, Query{
				Label: connectionLabel(el, len(queries)+1) + " (initial SQL)",
				SQL:   sql,
			})
		}
	})

	return queries
}

// walk visits el and all its descendants depth-first in document order.
func walk(el *etree.Element, visit func(*etree.Element)) {
	visit(el)
	for _, child := range el.ChildElements() {
		walk(child, visit)
	}
}

// findDescendant returns the first descendant of el (excluding el itself,
// in document order) satisfying match, or nil.
func findDescendant(el *etree.Element, match elementPredicate) *etree.Element {
	var found *etree.Element
	for _, child := range el.ChildElements() {
		walk(child, func(d *etree.Element) {
			if found == nil && match(d) {
				found = d
			}
		})
		if found != nil {
			break
		}
	}
	return found
}

// connectionLabel picks a display label for a connection-like element:
// its caption attribute, else its name attribute, else "Connection N"
// where ordinal is the result's 1-based position in the run.
func connectionLabel(el *etree.Element, ordinal int) string {
	if caption := strings.TrimSpace(el.SelectAttrValue("caption", "")); caption != "" {
		return caption
	}
	if name := strings.TrimSpace(el.SelectAttrValue("name", "")); name != "" {
		return name
	}
	return fmt.Sprintf("Connection %d", ordinal)
}
