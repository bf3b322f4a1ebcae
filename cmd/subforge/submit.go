package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		serverFlag   string
		langFlag     string
		keepOriginal bool
		modelFlag    string
	)

	cmd := &cobra.Command{
		Use:   "submit <media-file>",
		Short: "Submit a media file to a running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			server := strings.TrimSpace(serverFlag)
			if server == "" {
				server = cfg.Paths.APIBind
			}
			baseURL := server
			if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
				baseURL = "http://" + baseURL
			}

			resp, err := uploadFile(baseURL, args[0], langFlag, keepOriginal, modelFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s queued (%s)\n", resp.TaskID, resp.FileType)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "Daemon address (defaults to the configured api_bind)")
	cmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Target translation language")
	cmd.Flags().BoolVar(&keepOriginal, "keep-original", false, "Keep the original text alongside the translation")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Transcription model (defaults to the configured model)")
	return cmd
}

type uploadResponse struct {
	TaskID   string `json:"task_id"`
	Message  string `json:"message"`
	FileType string `json:"file_type"`
	Error    string `json:"error"`
}

func uploadFile(baseURL, path, targetLang string, keepOriginal bool, model string) (*uploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		fields := map[string]string{
			"target_lang":   targetLang,
			"keep_original": strconv.FormatBool(keepOriginal),
			"model":         model,
		}
		for name, value := range fields {
			if value == "" {
				continue
			}
			if err := writer.WriteField(name, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(writer.Close())
	}()

	resp, err := http.Post(baseURL+"/upload", writer.FormDataContentType(), pr)
	if err != nil {
		return nil, fmt.Errorf("upload to daemon: %w", err)
	}
	defer resp.Body.Close()

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode daemon response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if payload.Error != "" {
			return nil, fmt.Errorf("daemon rejected upload: %s", payload.Error)
		}
		return nil, fmt.Errorf("daemon rejected upload: %s", resp.Status)
	}
	return &payload, nil
}
