package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/filtering"
	"github.com/spigell/skill-matcher/internal/postings"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompanies   = "Report by companies"
	PromptManualReview        = "Review postings in manual mode"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptPostingsToFile      = "Dump postings to file"
)

var rankPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptReportByCompanies, PromptManualReview, PromptPostingsToFile, PromptAppendToExcludeFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank <postings-file>",
	Short: "Score a file of job postings and rank them by match",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().Int("min-score", 0, "drop postings scored below this value")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	rankCmd.Flags().StringSlice("exclude-company", nil, "companies to drop from the ranking")
	rankCmd.Flags().Int("workers", 0, "number of postings scored in parallel")
	rankCmd.Flags().StringSlice("skills", nil, "candidate skills, overrides candidate.skills from the config")
	rankCmd.Flags().BoolP("yes", "y", false, "do not prompt, print the ranking and exit")

	viper.BindPFlag("rank.min-score", rankCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("rank.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("rank.exclude-companies", rankCmd.Flags().Lookup("exclude-company"))
	viper.BindPFlag("rank.workers", rankCmd.Flags().Lookup("workers"))
}

func rank(cmd *cobra.Command, path string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config.Rank, "", "  ")
	logger.Debug(fmt.Sprintf("ranking with config: \n %s", pretty))

	inputs, err := loadInputs(config)
	if err != nil {
		logger.Fatal("loading match inputs", zap.Error(err))
	}
	requested, _ := cmd.Flags().GetStringSlice("skills")
	inputs = inputs.withCandidate(requested)

	list, err := postings.Load(path)
	if err != nil {
		logger.Fatal("loading postings", zap.Error(err))
	}

	logger.Info("loaded postings", zap.String("file", path), zap.Int("count", list.Len()))

	if list.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	steps := filtering.Default()
	list, err = filtering.Run(ctx, config.Rank.filteringConfig(), filtering.Deps{
		Logger:     logger,
		Vocabulary: inputs.vocabulary,
		Candidate:  inputs.candidate,
	}, steps, list)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	if list.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	list.SortByScore()
	printRanking(os.Stdout, list)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return
	}

	for {
		_, action, err := rankPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of postings", zap.Int("count", list.Len()))

		if err := handleRankAction(action, logger, config, list); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleRankAction(action string, logger *zap.Logger, config *Config, list *postings.Postings) error {
	switch action {
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(list.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", list.Len()))
		return nil
	case PromptManualReview:
		return manualReview(logger, config.Rank.ExcludeFile, list)
	case PromptPostingsToFile:
		filename, err := list.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.Rank.ExcludeFile, list, list)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func manualReview(logger *zap.Logger, excludeFile string, list *postings.Postings) error {
	for {
		items := make([]string, 0, list.Len()+1)
		for _, p := range list.Items {
			items = append(items, postingLabel(p))
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := postingPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		posting := list.FindByID(id)
		if posting == nil {
			return fmt.Errorf("there is no such posting id %s", id)
		}

		printPosting(os.Stdout, posting)

		if excludeFile == "" {
			continue
		}

		confirm := promptui.Select{
			Label: "Exclude this posting from future rankings?",
			Items: []string{PromptNo, PromptYes},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			return err
		}
		if answer == PromptYes {
			single := &postings.Postings{Items: []*postings.Posting{posting}}
			if err := appendToExcludeFile(logger, excludeFile, single, list); err != nil {
				return err
			}
		}
	}
}

// appendToExcludeFile records selected postings in the exclude file and drops them from list.
func appendToExcludeFile(logger *zap.Logger, excludeFile string, selected, list *postings.Postings) error {
	if excludeFile == "" {
		return fmt.Errorf("exclude file is not configured (set rank.exclude-file or --exclude-file)")
	}

	excluded, err := postings.GetExcludedPostingsFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(selected.ToExcluded())

	if err = excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile))

	list.Exclude(postings.PostingIDField, excluded.IDs())
	return nil
}

func postingLabel(p *postings.Posting) string {
	return fmt.Sprintf("%s %d%% %s / %s / %s", p.ID, p.Score(), p.Title, p.Company, p.URL)
}

func printRanking(w io.Writer, list *postings.Postings) {
	for i, p := range list.Items {
		fmt.Fprintf(w, "%2d. [%3d%%] %s %s / %s\n", i+1, p.Score(), p.ID, p.Title, p.Company)
	}
}

func printPosting(w io.Writer, p *postings.Posting) {
	fmt.Fprintf(w, "%s %s / %s\n%s\n", p.ID, p.Title, p.Company, p.URL)
	if p.Match == nil {
		return
	}
	fmt.Fprintf(w, "Score: %d%%\nMatched skills: %s\nMissing skills: %s\n%s\n",
		p.Match.Score,
		joinOrNone(p.Match.MatchedSkills),
		joinOrNone(p.Match.MissingSkills),
		p.Match.Message,
	)
}
