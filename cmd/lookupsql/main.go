// Command lookupsql translates double-underscore lookup expressions into a
// PostgreSQL SELECT over a demo blog schema and prints the result.
//
//	lookupsql --entity post 'pub_date__year=2008' 'blog__name__contains=go'
//	lookupsql --entity post --order -pub_date --related blog --depth 1
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/postgres"
	"github.com/krew-solutions/queryset-go/queryset/query"
	"github.com/krew-solutions/queryset-go/queryset/schema"
)

func demoSchema() map[string]*schema.Entity {
	blog := schema.NewEntity("Blog", "blogs").
		AddColumn("id", "id").
		AddColumn("name", "name").
		SetPrimaryKey("id")
	post := schema.NewEntity("Post", "posts").
		AddColumn("id", "id").
		AddColumn("title", "title").
		AddColumn("body", "body").
		AddColumn("pub_date", "pub_date").
		AddToOne("blog", blog, schema.ForeignKeyPair{OwnerColumn: "blog_id", TargetColumn: "id"}).
		SetPrimaryKey("id")
	comment := schema.NewEntity("Comment", "comments").
		AddColumn("id", "id").
		AddColumn("body", "body").
		AddToOne("post", post, schema.ForeignKeyPair{OwnerColumn: "post_id", TargetColumn: "id"}).
		SetPrimaryKey("id")
	blog.AddToMany("posts", post, schema.ForeignKeyPair{OwnerColumn: "id", TargetColumn: "blog_id"})
	post.AddToMany("comments", comment, schema.ForeignKeyPair{OwnerColumn: "id", TargetColumn: "post_id"})
	return map[string]*schema.Entity{
		"blog":    blog,
		"post":    post,
		"comment": comment,
	}
}

var (
	entityName string
	orderTerms []string
	excludes   []string
	related    []string
	depth      int
)

var rootCmd = &cobra.Command{
	Use:   "lookupsql [field__op=value ...]",
	Short: "Translate double-underscore lookups into a PostgreSQL SELECT",
	RunE: func(cmd *cobra.Command, args []string) error {
		entities := demoSchema()
		base, ok := entities[entityName]
		if !ok {
			return fmt.Errorf("unknown entity %q (known: blog, post, comment)", entityName)
		}

		q := query.New(base)
		var err error
		for _, arg := range args {
			key, value, parseErr := parseLookup(arg)
			if parseErr != nil {
				return parseErr
			}
			if q, err = q.FilterBy(map[string]any{key: value}); err != nil {
				return err
			}
		}
		for _, arg := range excludes {
			key, value, parseErr := parseLookup(arg)
			if parseErr != nil {
				return parseErr
			}
			if q, err = q.ExcludeBy(map[string]any{key: value}); err != nil {
				return err
			}
		}
		if len(orderTerms) > 0 {
			terms := make([]any, len(orderTerms))
			for i, term := range orderTerms {
				terms[i] = term
			}
			if q, err = q.OrderBy(terms...); err != nil {
				return err
			}
		}
		if len(related) > 0 {
			var options lookup.Options
			if cmd.Flags().Changed("depth") {
				options = lookup.Options{"depth": depth}
			}
			if q, err = q.SelectRelated(related, options); err != nil {
				return err
			}
		}

		stmt, err := postgres.CompileSelect(q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), stmt.SQL)
		for i, arg := range stmt.Args {
			fmt.Fprintf(cmd.OutOrStdout(), "$%d = %v\n", i+1, arg)
		}
		return nil
	},
}

func parseLookup(arg string) (string, any, error) {
	key, raw, found := strings.Cut(arg, "=")
	if !found {
		return "", nil, fmt.Errorf("lookup %q must have the form field__op=value", arg)
	}
	if strings.HasSuffix(key, "__in") || strings.HasSuffix(key, "__range") {
		parts := strings.Split(raw, ",")
		values := make([]any, len(parts))
		for i, part := range parts {
			values[i] = parseScalar(part)
		}
		return key, values, nil
	}
	return key, parseScalar(raw), nil
}

func parseScalar(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func init() {
	rootCmd.Flags().StringVar(&entityName, "entity", "post", "base entity of the query")
	rootCmd.Flags().StringArrayVar(&orderTerms, "order", nil, "ordering term, e.g. -pub_date or blog__name")
	rootCmd.Flags().StringArrayVar(&excludes, "exclude", nil, "negated lookup, e.g. id__in=1,2")
	rootCmd.Flags().StringArrayVar(&related, "related", nil, "relationship path to eager-load, e.g. blog")
	rootCmd.Flags().IntVar(&depth, "depth", 0, "limit eager loading to the first path level (only depth 1 is supported)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
