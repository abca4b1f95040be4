package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tautek/riak"
)

var (
	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Upload or read Yokozuna schemas",
	}

	schemaPutCmd = &cobra.Command{
		Use:   "put [name] [file]",
		Short: "Upload a Solr schema from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := client.SetYokozunaSchema(cmd.Context(), []byte(args[0]), content); err != nil {
				return err
			}
			fmt.Println("schema stored")
			return nil
		},
	}

	schemaGetCmd = &cobra.Command{
		Use:   "get [name]",
		Short: "Print a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := client.GetYokozunaSchema(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(string(content))
			return nil
		},
	}

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Create, list or drop Yokozuna indexes",
	}

	indexPutCmd = &cobra.Command{
		Use:   "put [name]",
		Short: "Create a search index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := riak.YokozunaIndex{
				Name:   []byte(args[0]),
				Schema: bytesFlag(cmd.Flags(), "schema"),
				NVal:   uint32Flag(cmd.Flags(), "n-val"),
			}
			if err := client.SetYokozunaIndex(cmd.Context(), index); err != nil {
				return err
			}
			fmt.Println("index stored")
			return nil
		},
	}

	indexGetCmd = &cobra.Command{
		Use:   "get [name]",
		Short: "Print one index, or all of them without a name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name []byte
			if len(args) == 1 {
				name = []byte(args[0])
			}
			indexes, err := client.GetYokozunaIndex(cmd.Context(), name)
			if err != nil {
				return err
			}
			for _, index := range indexes {
				nval := "-"
				if index.NVal != nil {
					nval = fmt.Sprint(*index.NVal)
				}
				fmt.Printf("%s schema=%s n_val=%s\n", index.Name, index.Schema, nval)
			}
			return nil
		},
	}

	indexDeleteCmd = &cobra.Command{
		Use:   "delete [name]",
		Short: "Drop a search index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteYokozunaIndex(cmd.Context(), []byte(args[0])); err != nil {
				return err
			}
			fmt.Println("index deleted")
			return nil
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search [index] [query]",
		Short: "Run a Solr query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := riak.SearchQueryReq{
				Index:  []byte(args[0]),
				Q:      []byte(args[1]),
				Rows:   uint32Flag(flags, "rows"),
				Start:  uint32Flag(flags, "start"),
				Sort:   bytesFlag(flags, "sort"),
				Filter: bytesFlag(flags, "filter"),
				DF:     bytesFlag(flags, "df"),
			}
			fields, _ := flags.GetStringSlice("fl")
			for _, f := range fields {
				req.FL = append(req.FL, []byte(f))
			}

			resp, err := client.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			if resp.NumFound != nil {
				fmt.Printf("found: %d\n", *resp.NumFound)
			}
			for _, doc := range resp.Docs {
				parts := make([]string, 0, len(doc.Fields))
				for _, field := range doc.Fields {
					parts = append(parts, fmt.Sprintf("%s=%s", field.Key, field.Value))
				}
				fmt.Println(strings.Join(parts, " "))
			}
			return nil
		},
	}
)

func init() {
	schemaCmd.AddCommand(schemaPutCmd, schemaGetCmd)

	indexPutCmd.Flags().String("schema", "", wrapString("schema name, _yz_default when empty"))
	indexPutCmd.Flags().Uint32("n-val", 3, wrapString("number of index replicas"))
	indexCmd.AddCommand(indexPutCmd, indexGetCmd, indexDeleteCmd)

	f := searchCmd.Flags()
	f.Uint32("rows", 10, wrapString("maximum number of documents"))
	f.Uint32("start", 0, wrapString("offset of the first document"))
	f.String("sort", "", wrapString("sort expression"))
	f.String("filter", "", wrapString("filter query"))
	f.String("df", "", wrapString("default field"))
	f.StringSlice("fl", nil, wrapString("fields to return"))
}
