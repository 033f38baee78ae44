package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

var voiceOut string

var voiceCmd = &cobra.Command{
	Use:   "voice [audio-file]",
	Short: "Answer a spoken question",
	Long: `Transcribes a recorded question, answers it from the corpus, and
synthesises the answer as audio.`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().StringVarP(&voiceOut, "out", "o", "answer.wav", "output file for the spoken answer")
	rootCmd.AddCommand(voiceCmd)
}

func runVoice(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	audio, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	resp, err := voiceService.Ask(cmd.Context(), audio, queryDefaults(domain.QueryOptions{}), func(event domain.VoiceEvent) error {
		switch event.Type {
		case domain.VoiceEventTranscript:
			cmd.Printf("Q: %s\n\n", event.Text)
		case domain.VoiceEventResponse:
			if event.Response == nil {
				cmd.Print(event.Text)
			}
		case domain.VoiceEventAudio:
			if err := os.WriteFile(voiceOut, event.Audio, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", voiceOut, err)
			}
			cmd.Printf("\nSpoken answer written to %s\n", voiceOut)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("voice query failed: %w", err)
	}

	cmd.Println()
	printSources(cmd, resp)
	return nil
}
