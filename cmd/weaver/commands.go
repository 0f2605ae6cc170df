package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weaverhq/goweaver/internal/prompt"
	"github.com/weaverhq/goweaver/pkg/pagetext"
)

func saveCmd() *cobra.Command {
	var sourceURL string
	var htmlFile string

	cmd := &cobra.Command{
		Use:   "save [text]",
		Short: "Save a snippet and extract it into the graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case htmlFile != "":
				f, err := os.Open(htmlFile)
				if err != nil {
					return err
				}
				defer f.Close()
				text, err = pagetext.FromHTML(f)
				if err != nil {
					return err
				}
			case len(args) == 1:
				text = args[0]
			default:
				return fmt.Errorf("provide snippet text or --html")
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("nothing to save: snippet text is empty")
			}

			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := eng.SaveSnippet(cmd.Context(), text, sourceURL)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s (%d nodes, %d relationships)\n", s.ID, len(s.Nodes), len(s.Relationships))
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceURL, "url", "", "source URL of the snippet")
	cmd.Flags().StringVar(&htmlFile, "html", "", "extract the snippet from an HTML file")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snippets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			snippets, err := eng.GetSnippets(cmd.Context())
			if err != nil {
				return err
			}
			if len(snippets) == 0 {
				fmt.Println("No snippets saved.")
				return nil
			}
			for _, s := range snippets {
				when := time.UnixMilli(s.Timestamp).Format("2006-01-02 15:04")
				fmt.Printf("%s  %s  %s\n    %s\n",
					s.ID, when, prompt.SourceDomain(s.SourceURL), prompt.Preview(s.Text, 120))
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snippet and rebuild the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := eng.DeleteSnippet(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all snippets and the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := eng.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing everything")
	return cmd
}

func optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <prompt...>",
		Short: "Enrich a prompt with relevant saved context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			out, err := eng.OptimizeQuery(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the merged knowledge graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			g, err := eng.GetGraph(cmd.Context())
			if err != nil {
				return err
			}
			if g.Empty() {
				fmt.Println("Graph is empty.")
				return nil
			}
			fmt.Printf("Nodes (%d):\n", len(g.Nodes))
			for _, n := range g.Nodes {
				fmt.Printf("  %s  %s (%s): %s\n", n.ID, n.Name, n.Type, n.Description)
			}
			fmt.Printf("Relationships (%d):\n", len(g.Relationships))
			for _, r := range g.Relationships {
				fmt.Printf("  %s  %s -[%s]-> %s\n", r.ID, r.FromNode, r.RelationshipType, r.ToNode)
			}
			return nil
		},
	}
}

func relatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "related <nodeId>",
		Short: "List snippets connected to a graph node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, st, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			snippets, err := eng.RelatedSnippets(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(snippets) == 0 {
				fmt.Println("No related snippets.")
				return nil
			}
			for _, s := range snippets {
				fmt.Printf("%s  %s\n", s.ID, prompt.Preview(s.Text, 120))
			}
			return nil
		},
	}
}
