package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alfredjeanlab/pakegui/internal/env"
	"github.com/alfredjeanlab/pakegui/internal/model"
	"github.com/alfredjeanlab/pakegui/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func configURL(c model.BuildConfig) string {
	if c.URL == nil {
		return ""
	}
	return *c.URL
}

func printProjectTable(p *model.Project) {
	fmt.Printf("ID:        %s\n", ui.RenderAccent(p.ID))
	fmt.Printf("Name:      %s\n", p.Name)
	fmt.Printf("URL:       %s\n", configURL(p.Config))
	if p.LastModified > 0 {
		fmt.Printf("Modified:  %s\n", p.ModifiedAt().Format(timeLayout))
	}
	fmt.Printf("Directory: %s\n", reg.PathOf(p.ID))

	data, err := json.MarshalIndent(p.Config, "           ", "  ")
	if err == nil {
		fmt.Printf("Config:    %s\n", data)
	}
}

func printProjectListTable(projects []*model.Project) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL\tMODIFIED")
	for _, p := range projects {
		url := configURL(p.Config)
		if len(url) > 50 {
			url = url[:47] + "..."
		}
		modified := ""
		if p.LastModified > 0 {
			modified = p.ModifiedAt().Format(timeLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, url, modified)
	}
	w.Flush()
	fmt.Printf("\n%d projects\n", len(projects))
}

func printEnvTable(results map[string]env.Status) {
	tools := make([]string, 0, len(results))
	for tool := range results {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSTATUS\tVERSION\tPATH")
	for _, tool := range tools {
		st := results[tool]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tool, ui.RenderState(string(st.Status)), st.Version, st.Path)
	}
	w.Flush()
}

// envReady reports whether every tool pake-cli needs passed its probe.
// Bun is an alternative to Node and may be missing.
func envReady(results map[string]env.Status) (bool, []string) {
	var missing []string
	for tool, st := range results {
		if tool == env.ToolBun {
			continue
		}
		if st.Status == env.StateError {
			missing = append(missing, tool)
		}
	}
	sort.Strings(missing)
	return len(missing) == 0, missing
}
