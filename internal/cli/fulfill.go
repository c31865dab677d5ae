package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cryptoconditions "github.com/LeJamon/go-cryptoconditions"
	"github.com/LeJamon/go-cryptoconditions/internal/crypto"
)

var (
	preimageData     string
	preimageDataFile string

	ed25519Seed    string
	ed25519Message string

	thresholdN    uint32
	thresholdSubs []string
)

var preimageCmd = &cobra.Command{
	Use:   "preimage",
	Short: "Build a PREIMAGE-SHA-256 fulfillment",
	RunE: func(cmd *cobra.Command, args []string) error {
		if preimageData != "" && preimageDataFile != "" {
			return fmt.Errorf("--data and --data-file are mutually exclusive")
		}
		data := []byte(preimageData)
		if preimageDataFile != "" {
			var err error
			data, err = os.ReadFile(preimageDataFile)
			if err != nil {
				return err
			}
		}
		return printFulfillment(cmd, cryptoconditions.NewPreimage(data))
	},
}

var ed25519Cmd = &cobra.Command{
	Use:   "ed25519",
	Short: "Build a signed ED25519 fulfillment",
	Long: `Derive an Ed25519 keypair from a base58-encoded 32-byte seed, sign the
message and print the fulfillment together with its condition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		publicKey, privateKey, err := crypto.KeypairFromBase58Seed(ed25519Seed)
		if err != nil {
			return err
		}
		f, err := cryptoconditions.NewEd25519(publicKey)
		if err != nil {
			return err
		}
		if err := f.Sign([]byte(ed25519Message), privateKey); err != nil {
			return err
		}
		return printFulfillment(cmd, f)
	},
}

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Build a THRESHOLD-SHA-256 fulfillment",
	Long: `Combine fulfillment (cf:) and condition (cc:) sub-URIs under a weight
threshold. Each --sub takes "<uri>", "<weight>:<uri>" counting the entry
with the given weight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cryptoconditions.NewThreshold(thresholdN)
		if err != nil {
			return err
		}
		for _, raw := range thresholdSubs {
			weight, uri, err := splitWeightedSub(raw)
			if err != nil {
				return err
			}
			switch {
			case strings.HasPrefix(uri, "cf:"):
				sub, err := cryptoconditions.ParseFulfillmentURI(uri)
				if err != nil {
					return err
				}
				if err := t.AddFulfillment(sub, weight, nil); err != nil {
					return err
				}
			case strings.HasPrefix(uri, "cc:"):
				sub, err := cryptoconditions.ParseConditionURI(uri)
				if err != nil {
					return err
				}
				if err := t.AddCondition(sub, weight, nil); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: subentry %q", cryptoconditions.ErrMalformedEncoding, raw)
			}
		}
		return printFulfillment(cmd, t)
	},
}

// splitWeightedSub parses "<weight>:<uri>" or a bare "<uri>" with weight 1.
func splitWeightedSub(raw string) (uint32, string, error) {
	if strings.HasPrefix(raw, "cf:") || strings.HasPrefix(raw, "cc:") {
		return 1, raw, nil
	}
	head, tail, found := strings.Cut(raw, ":")
	if !found {
		return 0, "", fmt.Errorf("invalid --sub value %q", raw)
	}
	weight, err := strconv.ParseUint(head, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("invalid --sub weight %q", head)
	}
	return uint32(weight), tail, nil
}

func init() {
	preimageCmd.Flags().StringVar(&preimageData, "data", "", "preimage as a literal string")
	preimageCmd.Flags().StringVar(&preimageDataFile, "data-file", "", "path to a file holding the preimage")

	ed25519Cmd.Flags().StringVar(&ed25519Seed, "seed", "", "base58-encoded 32-byte signing seed")
	ed25519Cmd.Flags().StringVar(&ed25519Message, "message", "", "message to sign")
	ed25519Cmd.MarkFlagRequired("seed")

	thresholdCmd.Flags().Uint32Var(&thresholdN, "threshold", 1, "required weight sum")
	thresholdCmd.Flags().StringArrayVar(&thresholdSubs, "sub", nil, "subentry URI, optionally \"<weight>:<uri>\"")
	thresholdCmd.MarkFlagRequired("sub")

	rootCmd.AddCommand(preimageCmd)
	rootCmd.AddCommand(ed25519Cmd)
	rootCmd.AddCommand(thresholdCmd)
}
