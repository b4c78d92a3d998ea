package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// 超卖压测：创建库存为 stock 的商品，并发 users 次扣减 1，成功次数必须恰好等于 stock

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base url")
	username := flag.String("user", "admin", "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	users := flag.Int("users", 2000, "concurrent buyers")
	stock := flag.Int("stock", 5, "initial stock")
	flag.Parse()

	// 1. 管理员登录
	token, err := login(*baseURL, *username, *password)
	if err != nil {
		fmt.Printf("登录失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 创建测试商品
	productID, err := createProduct(*baseURL, token, *stock)
	if err != nil {
		fmt.Printf("创建商品失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("开始压测：%d 个请求并发扣减库存 %d (product: %s)...\n", *users, *stock, productID)

	// 3. 并发扣减
	var wg sync.WaitGroup
	var success, insufficient, other int64
	start := time.Now()

	for i := 0; i < *users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := adjust(*baseURL, token, productID, -1)
			switch {
			case err != nil:
				atomic.AddInt64(&other, 1)
			case code == 0:
				atomic.AddInt64(&success, 1)
			case code == 30003:
				atomic.AddInt64(&insufficient, 1)
			default:
				atomic.AddInt64(&other, 1)
			}
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	remaining, err := getStock(*baseURL, token, productID)
	if err != nil {
		fmt.Printf("查询库存失败: %v\n", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*users)/duration.Seconds())
	fmt.Printf("扣减成功: %d (预期: %d)\n", success, *stock)
	fmt.Printf("库存不足: %d\n", insufficient)
	fmt.Printf("其他失败: %d\n", other)
	fmt.Printf("剩余库存: %d (预期: 0)\n", remaining)
	fmt.Println("--------------------------------------------------")

	if success != int64(*stock) || remaining != 0 {
		fmt.Println("检测到超卖或少卖")
		os.Exit(2)
	}
}

func call(method, url, token string, payload interface{}) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &env, nil
}

func login(baseURL, username, password string) (string, error) {
	env, err := call(http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if env.Code != 0 {
		return "", fmt.Errorf("code %d: %s", env.Code, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.Token, nil
}

func createProduct(baseURL, token string, stock int) (string, error) {
	env, err := call(http.MethodPost, baseURL+"/products", token, map[string]interface{}{
		"name":  fmt.Sprintf("压测商品-%d", time.Now().Unix()),
		"price": "9.90",
		"stock": stock,
	})
	if err != nil {
		return "", err
	}
	if env.Code != 0 {
		return "", fmt.Errorf("code %d: %s", env.Code, env.Message)
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.ID, nil
}

func adjust(baseURL, token, productID string, delta int) (int, error) {
	env, err := call(http.MethodPost, baseURL+"/inventory/adjust", token, map[string]interface{}{
		"productId": productID,
		"delta":     delta,
	})
	if err != nil {
		return 0, err
	}
	return env.Code, nil
}

func getStock(baseURL, token, productID string) (int, error) {
	env, err := call(http.MethodGet, baseURL+"/inventory/stock?productId="+productID, token, nil)
	if err != nil {
		return -1, err
	}
	if env.Code != 0 {
		return -1, fmt.Errorf("code %d: %s", env.Code, env.Message)
	}
	var data struct {
		Stock int `json:"stock"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return -1, err
	}
	return data.Stock, nil
}
