package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cryptoconditions "github.com/LeJamon/go-cryptoconditions"
)

var parseCmd = &cobra.Command{
	Use:   "parse <uri>",
	Short: "Parse a condition or fulfillment URI",
	Long: `Parse a cc: condition URI or cf: fulfillment URI and print its fields.
For a fulfillment the derived condition is printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri := args[0]
		switch {
		case strings.HasPrefix(uri, "cc:"):
			cond, err := cryptoconditions.ParseConditionURI(uri)
			if err != nil {
				return err
			}
			printCondition(cmd, cond)
			return nil
		case strings.HasPrefix(uri, "cf:"):
			f, err := cryptoconditions.ParseFulfillmentURI(uri)
			if err != nil {
				return err
			}
			return printFulfillment(cmd, f)
		default:
			return fmt.Errorf("%w: unrecognized URI prefix", cryptoconditions.ErrMalformedEncoding)
		}
	},
}

func printCondition(cmd *cobra.Command, cond *cryptoconditions.Condition) {
	cmd.Printf("condition:      %s\n", cond.URI())
	cmd.Printf("type bitmask:   0x%02x\n", cond.TypeBitmask())
	cmd.Printf("hash:           %s\n", hex.EncodeToString(cond.Hash()))
	cmd.Printf("max length:     %d\n", cond.MaxFulfillmentLength())
	cmd.Printf("binary:         %s\n", hex.EncodeToString(cond.Binary()))
}

func printFulfillment(cmd *cobra.Command, f cryptoconditions.Fulfillment) error {
	uri, err := cryptoconditions.FulfillmentURI(f)
	if err != nil {
		return err
	}
	cond, err := f.Condition()
	if err != nil {
		return err
	}
	binary, err := cryptoconditions.FulfillmentBinary(f)
	if err != nil {
		return err
	}
	cmd.Printf("fulfillment:    %s\n", uri)
	cmd.Printf("type:           %d\n", f.TypeBit())
	cmd.Printf("binary:         %s\n", hex.EncodeToString(binary))
	printCondition(cmd, cond)
	return nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
