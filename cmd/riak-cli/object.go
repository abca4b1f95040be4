package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tautek/riak"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check that the node answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print the node name and server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := client.ServerInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("node: %s\nversion: %s\n", info.Node, info.Version)
			return nil
		},
	}

	getCmd = &cobra.Command{
		Use:   "get [bucket] [key]",
		Short: "Fetch an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			r, err := quorumFlag(flags, "r")
			if err != nil {
				return err
			}
			pr, err := quorumFlag(flags, "pr")
			if err != nil {
				return err
			}

			resp, err := client.FetchObject(cmd.Context(), riak.FetchObjectReq{
				Type:   bytesFlag(flags, "type"),
				Bucket: []byte(args[0]),
				Key:    []byte(args[1]),
				R:      r,
				PR:     pr,
				Head:   boolFlag(flags, "head"),
			})
			if err != nil {
				return err
			}
			if len(resp.Content) == 0 {
				fmt.Println("not found")
				return nil
			}

			fmt.Printf("vclock: %x\n", resp.VClock)
			for i, content := range resp.Content {
				if len(resp.Content) > 1 {
					fmt.Printf("--- sibling %d\n", i+1)
				}
				printContent(content)
			}
			return nil
		},
	}

	putCmd = &cobra.Command{
		Use:   "put [bucket] [key] [value]",
		Short: "Store an object, omit the key to let the server pick one",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			w, err := quorumFlag(flags, "w")
			if err != nil {
				return err
			}

			req := riak.StoreObjectReq{
				Type:   bytesFlag(flags, "type"),
				Bucket: []byte(args[0]),
				W:      w,
				Content: riak.Content{
					ContentType: bytesFlag(flags, "content-type"),
				},
				ReturnBody:  boolFlag(flags, "return-body"),
				IfNoneMatch: boolFlag(flags, "if-none-match"),
			}
			if len(args) == 3 {
				req.Key = []byte(args[1])
				req.Content.Value = []byte(args[2])
			} else {
				req.Content.Value = []byte(args[1])
			}

			resp, err := client.StoreObject(cmd.Context(), req)
			if err != nil {
				return err
			}
			if resp.Key != nil {
				fmt.Printf("key: %s\n", resp.Key)
			}
			for _, content := range resp.Content {
				printContent(content)
			}
			fmt.Println("stored")
			return nil
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete [bucket] [key]",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.DeleteObject(cmd.Context(), riak.DeleteObjectReq{
				Type:   bytesFlag(cmd.Flags(), "type"),
				Bucket: []byte(args[0]),
				Key:    []byte(args[1]),
			})
			if err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}

	preflistCmd = &cobra.Command{
		Use:   "preflist [bucket] [key]",
		Short: "Show the partitions responsible for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client.FetchPreflist(cmd.Context(), []byte(args[0]), []byte(args[1]))
			if err != nil {
				return err
			}
			for _, item := range items {
				role := "primary"
				if !item.Primary {
					role = "fallback"
				}
				fmt.Printf("%-24d %-32s %s\n", item.Partition, item.Node, role)
			}
			return nil
		},
	}
)

func init() {
	bucketTypeFlag(getCmd)
	getCmd.Flags().String("r", "", wrapString("read quorum (one, quorum, all, default, N)"))
	getCmd.Flags().String("pr", "", wrapString("primary read quorum"))
	getCmd.Flags().Bool("head", false, wrapString("fetch metadata only"))

	bucketTypeFlag(putCmd)
	putCmd.Flags().String("w", "", wrapString("write quorum (one, quorum, all, default, N)"))
	putCmd.Flags().String("content-type", "text/plain", wrapString("content type of the value"))
	putCmd.Flags().Bool("return-body", false, wrapString("print the stored object"))
	putCmd.Flags().Bool("if-none-match", false, wrapString("fail if the key already exists"))

	bucketTypeFlag(deleteCmd)
}
