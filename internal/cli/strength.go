package cli

import (
	"github.com/manifoldco/promptui"
	"github.com/nbutton23/zxcvbn-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"soc-toolkit/internal/strength"
)

var (
	strengthCmd = &cobra.Command{
		Use:   "strength [PASSWORD]",
		Short: "Estimate the strength of a password locally",
		Long: "Estimate the strength of a password with a quick entropy heuristic plus a zxcvbn " +
			"score. Everything runs locally; the password never leaves this machine.",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return strengthCommand(args)
		},
	}
)

func init() {
	strengthCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Prompt for the password with masked input instead of reading it from the arguments")

	rootCmd.AddCommand(strengthCmd)
}

func strengthCommand(args []string) error {
	applyCliSettings(verbose, profile, pprofPort)

	var password string
	if interactive {
		prompt := promptui.Prompt{
			Label: "Password",
			Mask:  '*',
		}

		input, err := prompt.Run()
		if err != nil {
			return err
		}
		password = input
	} else {
		password = args[0]
	}

	assessment := strength.Estimate(password)
	entropy := zxcvbn.PasswordStrength(password, nil)

	log.Info().Msgf("%s: ~%d bits, zxcvbn score %d/4 (crackable in %s)",
		assessment.Label, assessment.Bits, entropy.Score, entropy.CrackTimeDisplay)
	for _, w := range assessment.Warnings {
		log.Warn().Msg(w)
	}
	for _, s := range assessment.Suggestions {
		log.Info().Msg(s)
	}

	return nil
}
