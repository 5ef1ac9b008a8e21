package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/xerrors"

	"github.com/baseera/fw-go/service/config"
)

type httpService struct {
	CfgSvc config.IService
	Client *http.Client
}

// NewHTTP posts waste-alert payloads to the configured webhook URL. When no
// URL is configured, posts are dropped silently.
func NewHTTP(cfgsvc config.IService) IService {
	return &httpService{
		CfgSvc: cfgsvc,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (svc *httpService) Post(payload map[string]interface{}) error {
	url := svc.CfgSvc.GetWasteWebhookURL()
	if url == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := svc.Client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return xerrors.New("webhook returned " + resp.Status)
	}

	return nil
}
