// Command provctl is an operator's CLI: derive addresses, decode container
// bytes, inspect the read store's current block, and check a batch's
// settlement status, mirroring the teacher's cobra-subcommand-per-concern
// layout (cmd/synnergy).
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"provenance-chain/core"
	"provenance-chain/internal/platform"
	"provenance-chain/internal/store"
	"provenance-chain/pkg/config"
)

func main() {
	root := &cobra.Command{Use: "provctl"}
	root.AddCommand(addressCmd())
	root.AddCommand(containerCmd())
	root.AddCommand(storeCmd())
	root.AddCommand(batchCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addressCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "address"}
	derive := &cobra.Command{
		Use:   "derive <kind> <key>...",
		Short: "derive the state address for an entity",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, keys := args[0], args[1:]
			addr, err := deriveAddress(kind, keys)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	cmd.AddCommand(derive)
	return cmd
}

func deriveAddress(kind string, keys []string) (string, error) {
	switch kind {
	case "agent":
		return core.AgentAddress(keys[0]), nil
	case "recordType":
		return core.RecordTypeAddress(keys[0]), nil
	case "record":
		return core.RecordAddress(keys[0]), nil
	case "property":
		if len(keys) < 2 {
			return "", fmt.Errorf("property requires <recordId> <name>")
		}
		return core.PropertyAddress(keys[0], keys[1]), nil
	case "propertyPage":
		if len(keys) < 3 {
			return "", fmt.Errorf("propertyPage requires <recordId> <name> <pageNum>")
		}
		n, err := strconv.ParseUint(keys[2], 10, 16)
		if err != nil {
			return "", fmt.Errorf("invalid page number: %w", err)
		}
		return core.PropertyPageAddress(keys[0], keys[1], uint16(n)), nil
	case "proposal":
		if len(keys) < 3 {
			return "", fmt.Errorf("proposal requires <recordId> <receivingAgent> <role>")
		}
		return core.ProposalAddress(keys[0], keys[1], keys[2]), nil
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}
}

func containerCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{Use: "container"}
	decode := &cobra.Command{
		Use:   "decode <hex>",
		Short: "decode a Container's entries as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}
			out, err := decodeContainerJSON(kind, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	decode.Flags().StringVar(&kind, "kind", "", "agent|recordType|record|property|propertyPage|proposal")
	_ = decode.MarkFlagRequired("kind")
	cmd.AddCommand(decode)
	return cmd
}

func decodeContainerJSON(kind string, b []byte) (string, error) {
	var v any
	var err error
	switch kind {
	case "agent":
		v, err = core.DecodeContainer(b, core.DecodeAgent)
	case "recordType":
		v, err = core.DecodeContainer(b, core.DecodeRecordType)
	case "record":
		v, err = core.DecodeContainer(b, core.DecodeRecord)
	case "property":
		v, err = core.DecodeContainer(b, core.DecodeProperty)
	case "propertyPage":
		v, err = core.DecodeContainer(b, core.DecodePropertyPage)
	case "proposal":
		v, err = core.DecodeContainer(b, core.DecodeProposal)
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "store"}
	resync := &cobra.Command{
		Use:   "resync",
		Short: "report the read store's current block (ledgersync always replays from block 0 on restart)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			uri := fmt.Sprintf("mongodb://%s:%d", cfg.Store.DBHost, cfg.Store.DBPort)
			st, err := store.DialMongo(ctx, uri, cfg.Store.DBName)
			if err != nil {
				return err
			}
			defer st.Close(ctx)
			blockNum, ok, err := st.CurrentBlock(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "store is empty; restart cmd/ledgersync to resync from block 0")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current block: %d\n", blockNum)
			return nil
		},
	}
	cmd.AddCommand(resync)
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "batch"}
	status := &cobra.Command{
		Use:   "status <batchId>",
		Short: "check a submitted batch's settlement status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			client, err := platform.Dial(cfg.Platform.ValidatorURL)
			if err != nil {
				return err
			}
			defer client.Close()
			s, err := client.Status(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.String())
			return nil
		},
	}
	cmd.AddCommand(status)
	return cmd
}
