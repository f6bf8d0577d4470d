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
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/document"
	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
	"github.com/spigell/skill-matcher/internal/utils"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	PromptShowReport = "Show report"
	PromptResultFile = "Dump result to file"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a job description against the candidate skills",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job", "", "job description text")
	analyzeCmd.Flags().String("job-file", "", "file with the job description (txt, md, html, pdf, docx)")
	analyzeCmd.Flags().StringSlice("skills", nil, "candidate skills, overrides candidate.skills from the config")
	analyzeCmd.Flags().String("format", FormatText, "output format: text or json")
	analyzeCmd.Flags().Duration("delay", 0, "simulated processing delay before analyzing")
	analyzeCmd.Flags().BoolP("yes", "y", false, "do not prompt, print the result and exit")
}

// AnalysisReport is the printed and dumped form of an analysis.
type AnalysisReport struct {
	skills.MatchResult
	View presentation.View `json:"view"`
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	config := mustConfig(log)

	format, _ := cmd.Flags().GetString("format")
	if format != FormatText && format != FormatJSON {
		log.Fatal("unsupported output format", zap.String("format", format))
	}
	yes, _ := cmd.Flags().GetBool("yes")
	interactive := !yes

	inputs, err := loadInputs(config)
	if err != nil {
		log.Fatal("loading match inputs", zap.Error(err))
	}
	requested, _ := cmd.Flags().GetStringSlice("skills")
	inputs = inputs.withCandidate(requested)

	job, err := jobDescription(cmd, config, interactive)
	if err != nil {
		log.Fatal("getting the job description", zap.Error(err))
	}

	if delay, _ := cmd.Flags().GetDuration("delay"); delay > 0 {
		log.Info("analyzing", zap.Duration("delay", delay))
		if err := utils.WaitFor(ctx, delay); err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
	}

	result := skills.Analyze(job, inputs.candidate, inputs.vocabulary)
	report := AnalysisReport{
		MatchResult: result,
		View:        presentation.NewView(result, inputs.display, inputs.badge),
	}

	log.Info("analysis completed", logger.AnalysisFields(result)...)

	if err := printReport(os.Stdout, format, report); err != nil {
		log.Fatal("printing the report", zap.Error(err))
	}

	if !interactive || format == FormatJSON {
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptShowReport, PromptResultFile, PromptExit},
	}
	for {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleAnalyzeAction(action, log, report); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAnalyzeAction(action string, logger *zap.Logger, report AnalysisReport) error {
	switch action {
	case PromptShowReport:
		return printReport(os.Stdout, FormatText, report)
	case PromptResultFile:
		filename, err := dumpReport(report)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// jobDescription takes the text from --job, then --job-file, then an interactive prompt.
func jobDescription(cmd *cobra.Command, config *Config, interactive bool) (string, error) {
	if text, _ := cmd.Flags().GetString("job"); strings.TrimSpace(text) != "" {
		return text, nil
	}

	if path, _ := cmd.Flags().GetString("job-file"); path != "" {
		return readJobFile(path, config.Upload.MaxSize)
	}

	if !interactive {
		return "", errors.New("job description is required (use --job or --job-file)")
	}

	prompt := promptui.Prompt{
		Label: "Job description",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("job description is required")
			}
			return nil
		},
	}
	return prompt.Run()
}

func readJobFile(path string, maxSize int64) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	policy := document.JobDescriptionPolicy()
	policy.MaxSize = maxSize

	contentType, err := document.Validate(document.Upload{Name: path, Size: stat.Size()}, policy)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return document.ExtractText(contentType, data)
}

func printReport(w io.Writer, format string, report AnalysisReport) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, err := fmt.Fprintf(w, "Score: %d%% (%s)\nMatched skills: %s\nMissing skills: %s\n%s\n",
		report.Score,
		report.View.Label,
		joinOrNone(report.MatchedSkills),
		joinOrNone(report.MissingSkills),
		report.Message,
	)
	return err
}

func dumpReport(report AnalysisReport) (string, error) {
	file, err := os.CreateTemp("", "analysis_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := printReport(file, FormatJSON, report); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func joinOrNone(set skills.SkillSet) string {
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ", ")
}
