package keymap

import (
	"fmt"
	"sort"
	"strings"
)

var helpSections = []struct {
	Title   string
	Context Context
}{
	{"Map", ContextGlobal},
	{"Idle", ContextIdle},
	{"Drawing", ContextDrawing},
	{"Selecting", ContextSelecting},
	{"Selected area", ContextDialog},
	{"Mask form", ContextForm},
}

// GenerateHelp renders the bindings as markdown, one table per context,
// with keys for the same command merged into one row.
func (r *Registry) GenerateHelp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("# Masking Areas\n\n")
	sb.WriteString("Draw polygons on the map, tag what they hide, and edit or delete saved areas.\n")

	for _, sec := range helpSections {
		rows := r.helpRows(sec.Context)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n| Keys | Action |\n|---|---|\n", sec.Title)
		for _, row := range rows {
			fmt.Fprintf(&sb, "| %s | %s |\n", row.keys, row.desc)
		}
	}
	return sb.String()
}

type helpRow struct {
	keys string
	desc string
}

func (r *Registry) helpRows(ctx Context) []helpRow {
	keys := map[Command][]string{}
	desc := map[Command]string{}
	var order []Command
	for _, b := range r.bindings[ctx] {
		if _, seen := keys[b.Command]; !seen {
			order = append(order, b.Command)
			desc[b.Command] = b.Description
		}
		keys[b.Command] = append(keys[b.Command], "`"+b.Key+"`")
	}
	overrides := make([]string, 0, len(r.userOverrides))
	for k := range r.userOverrides {
		overrides = append(overrides, k)
	}
	sort.Strings(overrides)
	for _, k := range overrides {
		cmd := r.userOverrides[k]
		c, key := parseBinding(k)
		if c != ctx {
			continue
		}
		if _, seen := keys[cmd]; !seen {
			order = append(order, cmd)
			desc[cmd] = string(cmd)
		}
		keys[cmd] = append(keys[cmd], "`"+key+"`")
	}

	rows := make([]helpRow, 0, len(order))
	for _, cmd := range order {
		ks := keys[cmd]
		sort.Strings(ks)
		rows = append(rows, helpRow{keys: strings.Join(ks, " / "), desc: desc[cmd]})
	}
	return rows
}
