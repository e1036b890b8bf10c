package main

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig 对应 configs/server.yaml
type ServerConfig struct {
	Server struct {
		Port  string `yaml:"port"`
		Debug bool   `yaml:"debug"`
	} `yaml:"server"`
	Mongo struct {
		URI string `yaml:"uri"`
		DB  string `yaml:"db"`
	} `yaml:"mongo"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Gorse struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gorse"`
	Pipeline struct {
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
		PreloadBuffer   int `yaml:"preload_buffer"`
		FollowedLimit   int `yaml:"followed_limit"`
		InterestLimit   int `yaml:"interest_limit"`
		TrendingLimit   int `yaml:"trending_limit"`
		RelatedLimit    int `yaml:"related_limit"`
	} `yaml:"pipeline"`
}

func loadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitServerConfig 初始化服务器配置，优先级：命令行参数 > 配置文件 > 默认值
func InitServerConfig() *ServerConfig {
	configPath := flag.String("config", "configs/server.yaml", "Path to server config file")
	portFlag := flag.String("port", "", "Server port")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	mongoURIFlag := flag.String("mongo-uri", "", "MongoDB connection URI")
	redisAddrFlag := flag.String("redis-addr", "", "Redis address")
	gorseURLFlag := flag.String("gorse-url", "", "Gorse API base URL")
	flag.Parse()

	// 1. 默认值
	cfg := &ServerConfig{}
	cfg.Server.Port = "5000"
	cfg.Mongo.URI = "mongodb://127.0.0.1:27017"
	cfg.Mongo.DB = "gorse_app"
	cfg.Redis.Addr = "127.0.0.1:6379"
	cfg.Gorse.URL = "http://localhost:8087/api"
	cfg.Gorse.TimeoutSeconds = 6
	cfg.Pipeline.CacheTTLSeconds = 600
	cfg.Pipeline.PreloadBuffer = 100
	cfg.Pipeline.FollowedLimit = 50
	cfg.Pipeline.InterestLimit = 30
	cfg.Pipeline.TrendingLimit = 20
	cfg.Pipeline.RelatedLimit = 20

	// 2. 配置文件覆盖默认值。默认路径不存在不算错误，只打印日志
	if loaded, err := loadServerConfig(*configPath); err == nil {
		if loaded.Server.Port != "" {
			cfg.Server.Port = loaded.Server.Port
		}
		if loaded.Server.Debug {
			cfg.Server.Debug = true
		}
		if loaded.Mongo.URI != "" {
			cfg.Mongo.URI = loaded.Mongo.URI
		}
		if loaded.Mongo.DB != "" {
			cfg.Mongo.DB = loaded.Mongo.DB
		}
		if loaded.Redis.Addr != "" {
			cfg.Redis.Addr = loaded.Redis.Addr
		}
		if loaded.Redis.Password != "" {
			cfg.Redis.Password = loaded.Redis.Password
		}
		if loaded.Redis.DB != 0 {
			cfg.Redis.DB = loaded.Redis.DB
		}
		if loaded.Gorse.URL != "" {
			cfg.Gorse.URL = loaded.Gorse.URL
		}
		if loaded.Gorse.TimeoutSeconds != 0 {
			cfg.Gorse.TimeoutSeconds = loaded.Gorse.TimeoutSeconds
		}
		if loaded.Pipeline.CacheTTLSeconds != 0 {
			cfg.Pipeline.CacheTTLSeconds = loaded.Pipeline.CacheTTLSeconds
		}
		if loaded.Pipeline.PreloadBuffer != 0 {
			cfg.Pipeline.PreloadBuffer = loaded.Pipeline.PreloadBuffer
		}
		if loaded.Pipeline.FollowedLimit != 0 {
			cfg.Pipeline.FollowedLimit = loaded.Pipeline.FollowedLimit
		}
		if loaded.Pipeline.InterestLimit != 0 {
			cfg.Pipeline.InterestLimit = loaded.Pipeline.InterestLimit
		}
		if loaded.Pipeline.TrendingLimit != 0 {
			cfg.Pipeline.TrendingLimit = loaded.Pipeline.TrendingLimit
		}
		if loaded.Pipeline.RelatedLimit != 0 {
			cfg.Pipeline.RelatedLimit = loaded.Pipeline.RelatedLimit
		}
	} else {
		log.Printf("Info: Could not load config file '%s': %v. Using defaults or flags.", *configPath, err)
	}

	// 3. 命令行参数优先级最高
	if *portFlag != "" {
		cfg.Server.Port = *portFlag
	}
	if *debugFlag {
		cfg.Server.Debug = true
	}
	if *mongoURIFlag != "" {
		cfg.Mongo.URI = *mongoURIFlag
	}
	if *redisAddrFlag != "" {
		cfg.Redis.Addr = *redisAddrFlag
	}
	if *gorseURLFlag != "" {
		cfg.Gorse.URL = *gorseURLFlag
	}

	// 密码类配置允许用环境变量注入，避免写进文件
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}

	return cfg
}
