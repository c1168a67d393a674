package common

import (
	"context"
	"fmt"

	"jobmatch/internal/errors"
)

// LoadInputFunc reads a command's input from its files
type LoadInputFunc[Input any] func(ctx context.Context, fp *FileProcessor) (Input, error)

// LogDetailsFunc logs the start of an operation
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs a command's operation on its loaded input
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunCommand encapsulates the common logic for file-based CLI commands:
// load the input, run the operation, then format and write the output.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	fileProcessor *FileProcessor,
	outputHandler *OutputHandler,
	cmdConfig CommandConfig,
	loadInput LoadInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	input, err := loadInput(ctx, fileProcessor)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if err := outputHandler.HandleOutput(result, cmdConfig); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Debug("Command completed", "format", cmdConfig.OutputFormat, "output", cmdConfig.OutputFile)
	return nil
}
