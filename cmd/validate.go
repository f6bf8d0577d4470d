package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <result-file>",
	Short: "Check a dumped analysis result against the result schema",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		validate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(path string) {
	logger := newLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading result file", zap.Error(err))
	}

	if err := schemas.ValidateResult(data); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			for _, fieldErr := range validationErr.Errors {
				logger.Error("invalid field", zap.String("field", fieldErr.Field), zap.String("reason", fieldErr.Message))
			}
		}
		logger.Fatal("result does not match the schema", zap.String("file", path), zap.Error(err))
	}

	fmt.Printf("%s: valid\n", path)
}
