package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cryptoconditions "github.com/LeJamon/go-cryptoconditions"
)

var (
	verifyCondition string
	verifyMessage   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <fulfillment-uri>...",
	Short: "Verify fulfillments against a condition",
	Long: `Verify one or more cf: fulfillment URIs against a cc: condition and a
message. Fulfillments are checked concurrently; the command fails if any
of them does not satisfy the condition.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cond, err := cryptoconditions.ParseConditionURI(verifyCondition)
		if err != nil {
			return err
		}
		message := []byte(verifyMessage)

		results := make([]error, len(args))
		var g errgroup.Group
		for i, uri := range args {
			g.Go(func() error {
				f, err := cryptoconditions.ParseFulfillmentURI(uri)
				if err != nil {
					results[i] = err
					return nil
				}
				b, err := cryptoconditions.FulfillmentBinary(f)
				if err != nil {
					results[i] = err
					return nil
				}
				results[i] = cryptoconditions.Verify(cond, b, message)
				return nil
			})
		}
		g.Wait()

		failed := 0
		for i, uri := range args {
			if results[i] != nil {
				failed++
				cmd.Printf("FAIL %s: %v\n", uri, results[i])
			} else {
				cmd.Printf("OK   %s\n", uri)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d fulfillments failed verification", failed, len(args))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyCondition, "condition", "", "cc: condition URI to verify against")
	verifyCmd.Flags().StringVar(&verifyMessage, "message", "", "message the fulfillments must validate")
	verifyCmd.MarkFlagRequired("condition")

	rootCmd.AddCommand(verifyCmd)
}
