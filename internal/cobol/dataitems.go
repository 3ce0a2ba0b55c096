package cobol

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var levelRe = regexp.MustCompile(`(?is)^(\d+)\s+(FILLER|[A-Za-z0-9_-]+)\b(.*)$`)
var pictureRe = regexp.MustCompile(`(?is)\bPIC(?:TURE)?\s+(?:IS\s+)?(\S+)`)
var usageRe = regexp.MustCompile(`(?is)\bUSAGE\s+(?:IS\s+)?([A-Za-z0-9-]+(?:\s+[A-Za-z0-9-]+)?)`)
var redefinesRe = regexp.MustCompile(`(?is)\bREDEFINES\s+([A-Za-z0-9_-]+)`)
var occursRe = regexp.MustCompile(`(?is)\bOCCURS\s+(\d+)`)

// parseDataItem parses one data-division sentence into a COBOLDataItem.
// Returns ok=false when the sentence's first token is not a numeric level,
// per spec.md §4.5 step 2 ("skip on parse failure").
func parseDataItem(sentence, section string) (model.COBOLDataItem, bool) {
	m := levelRe.FindStringSubmatch(sentence)
	if m == nil {
		return model.COBOLDataItem{}, false
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return model.COBOLDataItem{}, false
	}
	rest := m[3]
	item := model.COBOLDataItem{Level: level, Name: strings.ToUpper(m[2]), Section: section}
	if pm := pictureRe.FindStringSubmatch(rest); pm != nil {
		item.Picture = pm[1]
	}
	if um := usageRe.FindStringSubmatch(rest); um != nil {
		item.Usage = strings.ToUpper(strings.TrimSpace(um[1]))
	}
	if rm := redefinesRe.FindStringSubmatch(rest); rm != nil {
		item.Redefines = strings.ToUpper(rm[1])
	}
	if om := occursRe.FindStringSubmatch(rest); om != nil {
		if n, err := strconv.Atoi(om[1]); err == nil {
			item.Occurs = n
		}
	}
	return item, true
}

// dataItemNode is a heap-allocated intermediate used only while building the
// tree, so the level stack can hold stable pointers across sibling appends.
// model.COBOLDataItem.Children is a value slice, which would otherwise
// invalidate any pointer taken into it (or into the top-level slice) the
// next time a sibling is appended and the backing array reallocates.
type dataItemNode struct {
	item     model.COBOLDataItem
	children []*dataItemNode
}

func (n *dataItemNode) toModel() model.COBOLDataItem {
	out := n.item
	for _, c := range n.children {
		out.Children = append(out.Children, c.toModel())
	}
	return out
}

// buildDataItemTree applies spec.md §4.5's level-stack algorithm to a
// sequence of data-division sentences belonging to one section/FD scope:
// pop while the stack top's level is >= the new item's level, append to
// the new top's children (or the top-level list, if the stack emptied),
// then push unless the level is 77 or 88 (standalone / condition names
// never have children).
func buildDataItemTree(sentences []string, section string) []model.COBOLDataItem {
	var roots []*dataItemNode
	var stack []*dataItemNode
	for _, sent := range sentences {
		item, ok := parseDataItem(sent, section)
		if !ok {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].item.Level >= item.Level {
			stack = stack[:len(stack)-1]
		}
		node := &dataItemNode{item: item}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		if item.Level != 77 && item.Level != 88 {
			stack = append(stack, node)
		}
	}
	items := make([]model.COBOLDataItem, len(roots))
	for i, r := range roots {
		items[i] = r.toModel()
	}
	return items
}
