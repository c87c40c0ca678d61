package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/inspecta/inspecta/pkg/capture"
	"github.com/inspecta/inspecta/pkg/flow"
	"github.com/inspecta/inspecta/pkg/log"
	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/notify"
	"github.com/inspecta/inspecta/pkg/render"
	"github.com/inspecta/inspecta/pkg/workflow"
)

func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   "Run a guided inspection interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Inspection title",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "inspection-type",
				Usage:    "Inspection type ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "container",
				Usage: "Container number, when known up front",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return runInspect(ctx, command)
		},
	}
}

func runInspect(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("inspect")

	apiClient := newClient(command)

	repository, err := workflow.NewRepository(apiClient)
	if err != nil {
		return err
	}

	service := flow.NewService(apiClient, repository, logger,
		flow.WithNotifier(notify.NewLogger(logger)))

	inspection, err := service.CreateInspection(ctx, &models.Inspection{
		Title:           command.String("title"),
		InspectionType:  command.Int("inspection-type"),
		ContainerNumber: command.String("container"),
	})
	if err != nil {
		return err
	}

	wf, err := service.WorkflowForType(ctx, inspection.InspectionType)
	if err != nil {
		return err
	}

	if wf == nil {
		fmt.Printf("Inspection %d created. This type has no guided workflow.\n", inspection.ID)

		return nil
	}

	runner, err := workflow.NewRunner(wf, workflow.WithLogger(logger))
	if err != nil {
		return err
	}

	prompt := &stepPrompt{scanner: bufio.NewScanner(os.Stdin), runner: runner}

	fmt.Printf("Inspection %d: %s (%d steps)\n", inspection.ID, wf.Name, runner.TotalSteps())

	for !runner.Done() {
		if err := prompt.run(ctx); err != nil {
			runner.ReleasePhotos()

			return err
		}
	}

	result, err := runner.Result()
	if err != nil {
		return err
	}

	if err := service.Complete(ctx, inspection.ID, wf, result); err != nil {
		return err
	}

	fmt.Printf("Inspection %d completed.\n", inspection.ID)

	return nil
}

// stepPrompt drives one step of the run over stdin. Typing "skip" at any
// prompt attempts to skip the whole step.
type stepPrompt struct {
	scanner *bufio.Scanner
	runner  *workflow.Runner
}

var errSkipRequested = errors.New("skip requested")

func (p *stepPrompt) run(ctx context.Context) error {
	step := p.runner.CurrentStep()

	fmt.Printf("\n[%d/%d] %s (%s)\n", p.runner.Cursor()+1, p.runner.TotalSteps(), step.Name, step.StepType)

	if step.Description != "" {
		fmt.Println(step.Description)
	}

	var err error

	switch step.StepType {
	case models.StepTypeForm:
		err = p.promptFields(step)
	case models.StepTypePhoto:
		err = p.promptPhotos(ctx, step)
	default:
		fmt.Println("Press enter to acknowledge this step.")
		_, err = p.readLine()
	}

	if errors.Is(err, errSkipRequested) {
		if skipErr := p.runner.Skip(); skipErr != nil {
			fmt.Printf("Cannot skip: %v\n", skipErr)
		}

		return nil
	}

	if err != nil {
		return err
	}

	if !p.runner.Next() {
		fmt.Println("Step blocked:")

		for fieldID, message := range p.runner.Errors() {
			fmt.Printf("  %s: %s\n", fieldID, message)
		}
	}

	return nil
}

// promptFields drives each field through the renderer, so the terminal
// shows the same control metadata the wizard would and changes flow back
// through the normalization layer.
func (p *stepPrompt) promptFields(step *models.WorkflowStep) error {
	for _, field := range step.Fields() {
		input := render.Field(field, p.runner.Answer(field.ID), p.runner.SetAnswer)
		if !input.Visible() {
			continue
		}

		label := field.Label
		if input.Control.Required {
			label += " *"
		}

		switch {
		case input.Value != nil && input.Value != "":
			fmt.Printf("%s [%v]: ", label, input.Value)
		case input.Control.Placeholder != "":
			fmt.Printf("%s (%s): ", label, input.Control.Placeholder)
		default:
			fmt.Printf("%s: ", label)
		}

		value, err := p.readLine()
		if err != nil {
			return err
		}

		if value == "" {
			continue
		}

		if input.Control.Kind == render.KindCheckbox {
			input.Change(isAffirmative(value))
		} else {
			input.Change(value)
		}
	}

	return nil
}

// promptPhotos funnels gallery-style file imports through a capture
// session whose confirmed artifacts land on the runner. A photo the
// runner rejects has its preview released here.
func (p *stepPrompt) promptPhotos(ctx context.Context, step *models.WorkflowStep) error {
	maxPhotos := 0
	if step.MaxPhotos != nil {
		maxPhotos = *step.MaxPhotos
	}

	var addErr error

	session := capture.NewSession(capture.Config{
		MaxPhotos:    maxPhotos,
		CurrentCount: len(p.runner.Photos()),
		OnCapture: func(photo *models.CapturedPhoto) {
			if err := p.runner.AddPhoto(photo); err != nil {
				_ = photo.Preview.Release()
				addErr = err
			}
		},
	})
	defer session.Close()

	fmt.Printf("Photo paths, one per line, empty line when done (min %d):\n", step.MinPhotos)

	for {
		fmt.Print("photo> ")

		path, err := p.readLine()
		if err != nil {
			return err
		}

		if path == "" {
			return nil
		}

		file, err := importedFile(path)
		if err != nil {
			fmt.Printf("Cannot read %s: %v\n", path, err)

			continue
		}

		if err := session.ImportFiles(ctx, []capture.ImportedFile{file}); err != nil {
			if errors.Is(err, capture.ErrSessionClosed) {
				fmt.Println("Photo quota reached for this step.")

				return nil
			}

			return err
		}

		if addErr != nil {
			return addErr
		}

		if session.State() == capture.StateClosed {
			fmt.Println("Photo quota reached for this step.")

			return nil
		}
	}
}

func isAffirmative(value string) bool {
	switch strings.ToLower(value) {
	case "s", "sim", "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// readLine returns the next trimmed input line. EOF ends the run.
func (p *stepPrompt) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}

		return "", errors.New("input closed before the run finished")
	}

	line := strings.TrimSpace(p.scanner.Text())
	if line == "skip" {
		return "", errSkipRequested
	}

	return line, nil
}

func importedFile(path string) (capture.ImportedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return capture.ImportedFile{}, err
	}

	return capture.ImportedFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
