package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// loginResponse 只取压测需要的字段
type loginResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// createResp 用于统计业务层成功率与订单号冲突
type createResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func main() {
	var (
		server   = flag.String("server", "http://localhost:3000", "Server base URL")
		email    = flag.String("email", "admin@restaurant.com", "Admin email")
		password = flag.String("password", "admin123", "Admin password")
		rate     = flag.Int("rate", 100, "Requests per second")
		duration = flag.String("duration", "30s", "Attack duration (e.g. 10s, 1m)")
		outJSON  = flag.String("out", "vegeta_results.json", "Summary JSON output file")
	)
	flag.Parse()

	attackDuration, err := time.ParseDuration(*duration)
	if err != nil {
		logger.Fatal("invalid duration", "err", err)
	}

	token := login(*server, *email, *password)
	if token == "" {
		logger.Fatal("login failed; aborting")
	}

	rand.Seed(time.Now().UnixNano())

	// 并发下单：验证订单号分配在高并发下的冲突率
	targeter := func(t *vegeta.Target) error {
		qty := rand.Intn(3) + 1
		price := float64(rand.Intn(20)+1) * 10000
		bodyMap := map[string]any{
			"userId": 1,
			"items": []map[string]any{
				{"product_id": rand.Intn(10) + 1, "name": "Load Test Dish", "quantity": qty, "unit_price": price},
			},
			"shippingAddress": map[string]any{
				"full_name":    "LT User",
				"phone_number": fmt.Sprintf("09%08d", rand.Intn(100000000)),
				"address":      "1 Load Test St",
				"city":         "HCM",
			},
			"paymentMethod": "COD",
			"totalAmount":   price * float64(qty),
			"shippingFee":   15000,
		}
		b, _ := json.Marshal(bodyMap)
		t.Method = http.MethodPost
		t.URL = fmt.Sprintf("%s/api/orders", *server)
		t.Body = b
		t.Header = http.Header{}
		t.Header.Set("Content-Type", "application/json")
		t.Header.Set("Authorization", "Bearer "+token)
		return nil
	}

	attacker := vegeta.NewAttacker()
	var metrics vegeta.Metrics
	created := uint64(0)
	conflicts := uint64(0)
	total := uint64(0)

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, attackDuration, "order_create") {
		metrics.Add(res)
		atomic.AddUint64(&total, 1)
		var cr createResp
		if err := json.Unmarshal(res.Body, &cr); err == nil {
			switch cr.Code {
			case 0:
				atomic.AddUint64(&created, 1)
			case 40003:
				atomic.AddUint64(&conflicts, 1)
			}
		}
	}
	metrics.Close()

	summary := map[string]any{
		"attack": map[string]any{
			"rate_rps": *rate,
			"duration": attackDuration.String(),
		},
		"vegeta_metrics": map[string]any{
			"requests":           metrics.Requests,
			"rate":               metrics.Rate,
			"throughput":         metrics.Throughput,
			"success_ratio_http": metrics.Success,
			"latency_mean_ms":    metrics.Latencies.Mean.Seconds() * 1000,
			"latency_p95_ms":     metrics.Latencies.P95.Seconds() * 1000,
			"latency_p99_ms":     metrics.Latencies.P99.Seconds() * 1000,
			"errors":             metrics.Errors,
		},
		"orders_created":         created,
		"order_number_conflicts": conflicts,
		"logical_total":          total,
		"timestamp":              time.Now().Format(time.RFC3339),
	}

	data, _ := json.MarshalIndent(summary, "", "  ")
	if err := os.WriteFile(*outJSON, data, 0644); err != nil {
		logger.Warn("write summary failed", "err", err)
	}
	fmt.Println(string(data))
}

func login(server, email, password string) string {
	client := &http.Client{Timeout: 5 * time.Second}
	var lr loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := postJSON(client, fmt.Sprintf("%s/api/auth/login", server), body, &lr); err != nil {
		logger.Warn("login failed", "email", email, "err", err)
		return ""
	}
	return lr.Token
}

func postJSON(client *http.Client, url string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d body %s", resp.StatusCode, string(body))
	}
	if out != nil {
		_ = json.Unmarshal(body, out)
	}
	return nil
}
