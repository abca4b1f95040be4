package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tautek/riak"
)

var (
	bucketsCmd = &cobra.Command{
		Use:   "buckets",
		Short: "List buckets (expensive: walks every key)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := client.StreamBucketsOfType(cmd.Context(), bytesFlag(cmd.Flags(), "type"))
			if err != nil {
				return err
			}
			defer stream.Close()
			return printStream(cmd, stream)
		},
	}

	keysCmd = &cobra.Command{
		Use:   "keys [bucket]",
		Short: "List the keys of a bucket (expensive: walks every key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := client.StreamKeysOfType(cmd.Context(), bytesFlag(cmd.Flags(), "type"), []byte(args[0]))
			if err != nil {
				return err
			}
			defer stream.Close()
			return printStream(cmd, stream)
		},
	}

	propsCmd = &cobra.Command{
		Use:   "props",
		Short: "Read, change or reset bucket properties",
	}

	propsGetCmd = &cobra.Command{
		Use:   "get [bucket]",
		Short: "Print bucket properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := client.GetBucketProperties(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}
			printProps(props)
			return nil
		},
	}

	propsSetCmd = &cobra.Command{
		Use:   "set [bucket]",
		Short: "Change the bucket properties given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := propsFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := client.SetBucketProperties(cmd.Context(), []byte(args[0]), props); err != nil {
				return err
			}
			fmt.Println("properties updated")
			return nil
		},
	}

	propsResetCmd = &cobra.Command{
		Use:   "reset [bucket]",
		Short: "Restore the default bucket properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ResetBucket(cmd.Context(), bytesFlag(cmd.Flags(), "type"), []byte(args[0])); err != nil {
				return err
			}
			fmt.Println("properties reset")
			return nil
		},
	}

	bucketTypeCmd = &cobra.Command{
		Use:   "bucket-type",
		Short: "Read or change bucket type properties",
	}

	bucketTypeGetCmd = &cobra.Command{
		Use:   "get [type]",
		Short: "Print bucket type properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := client.GetBucketTypeProperties(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}
			printProps(props)
			return nil
		},
	}

	bucketTypeSetCmd = &cobra.Command{
		Use:   "set [type]",
		Short: "Change the bucket type properties given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := propsFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := client.SetBucketTypeProperties(cmd.Context(), []byte(args[0]), props); err != nil {
				return err
			}
			fmt.Println("properties updated")
			return nil
		},
	}
)

func init() {
	bucketTypeFlag(bucketsCmd)
	bucketTypeFlag(keysCmd)
	keysCmd.Flags().Bool("batches", false, wrapString("print one line per received batch"))
	bucketsCmd.Flags().Bool("batches", false, wrapString("print one line per received batch"))

	propsSetCmd.Flags().SortFlags = false
	propsFlags(propsSetCmd)
	bucketTypeFlag(propsResetCmd)
	propsCmd.AddCommand(propsGetCmd, propsSetCmd, propsResetCmd)

	propsFlags(bucketTypeSetCmd)
	bucketTypeCmd.AddCommand(bucketTypeGetCmd, bucketTypeSetCmd)
}

func printStream(cmd *cobra.Command, stream *riak.Stream[[]byte]) error {
	batches, _ := cmd.Flags().GetBool("batches")

	var total int
	for {
		batch, err := stream.Next(cmd.Context())
		if errors.Is(err, riak.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}

		total += len(batch)
		if batches {
			fmt.Printf("batch of %d: %q\n", len(batch), batch)
			continue
		}
		for _, name := range batch {
			fmt.Printf("%s\n", name)
		}
	}

	logger.Info().Int("count", total).Msg("listing complete")
	return nil
}
