package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appbook "github.com/critical/catalog-service/internal/application/book"
	"github.com/critical/catalog-service/internal/domain/book"
	"github.com/critical/catalog-service/internal/domain/reference"
	"github.com/critical/catalog-service/internal/domain/stock"
	"github.com/critical/catalog-service/internal/infrastructure/config"
	"github.com/critical/catalog-service/internal/infrastructure/persistence/mysql"
	"github.com/critical/catalog-service/internal/infrastructure/persistence/redis"
	"github.com/critical/catalog-service/internal/interface/http/handler"
	"github.com/critical/catalog-service/internal/interface/http/middleware"
	ifacemq "github.com/critical/catalog-service/internal/interface/mq"
	"github.com/critical/catalog-service/internal/scheduler"
	"github.com/critical/catalog-service/pkg/metrics"
	"github.com/critical/catalog-service/pkg/mq"
	"github.com/critical/catalog-service/pkg/response"
)

// main 主程序入口
// 说明:手动依赖注入,组装顺序 Repository ← Service ← UseCase ← Handler
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 入站队列: %s\n", cfg.RabbitMQ.Inbound.Queue)

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	retryJobRepo := mysql.NewRetryJobRepository(db)
	txManager := mysql.NewTxManager(db)
	bookCache := redis.NewBookCache(redisClient, cfg.Redis.DetailTTL)

	authorRepo := mysql.NewReferenceRepository[reference.Author](db)
	publisherRepo := mysql.NewReferenceRepository[reference.Publisher](db)
	genreRepo := mysql.NewReferenceRepository[reference.Genre](db)
	languageRepo := mysql.NewReferenceRepository[reference.Language](db)
	formatRepo := mysql.NewReferenceRepository[reference.Format](db)
	tagRepo := mysql.NewReferenceRepository[reference.Tag](db)

	// 6. 领域层
	bookService := book.NewService(bookRepo)

	// 库存更新管道:调度器 ↔ 应用器互相引用,applier在Start时注入
	retrySched := scheduler.NewScheduler(retryJobRepo, cfg.Retry.Delay, cfg.Retry.MaxAttempts, cfg.Retry.PollInterval)
	applier := stock.NewApplier(bookRepo, txManager, retrySched, bookCache, cfg.Retry.Delay, mysql.IsTransientError)

	// 7. 应用层
	createBookUC := appbook.NewCreateBookUseCase(bookService)
	updateBookUC := appbook.NewUpdateBookUseCase(bookService, bookCache)
	queryBooksUC := appbook.NewQueryBooksUseCase(bookService, bookCache)

	// 8. 消息队列
	consumer, err := mq.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Inbound.Exchange,
		"topic",
		cfg.RabbitMQ.Inbound.Queue,
		[]string{cfg.RabbitMQ.Inbound.RoutingKey},
	)
	if err != nil {
		log.Fatalf("初始化消费者失败: %v", err)
	}

	publisher, err := mq.NewPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Outbound.Exchange,
		"topic",
		cfg.RabbitMQ.ConfirmTimeout,
	)
	if err != nil {
		log.Fatalf("初始化发布者失败: %v", err)
	}

	producer := ifacemq.NewBookStockProducer(publisher, cfg.RabbitMQ.Outbound.Exchange, cfg.RabbitMQ.Outbound.RoutingKey)
	listener := ifacemq.NewStockListener(consumer, applier)

	// 9. 接口层
	bookHandler := handler.NewBookHandler(createBookUC, updateBookUC, queryBooksUC)
	stockHandler := handler.NewStockHandler(producer)
	authorHandler := handler.NewAuthorHandler(reference.NewService(authorRepo))
	publisherHandler := handler.NewPublisherHandler(reference.NewService(publisherRepo))
	genreHandler := handler.NewGenreHandler(reference.NewService(genreRepo))
	languageHandler := handler.NewLanguageHandler(reference.NewService(languageRepo))
	formatHandler := handler.NewFormatHandler(reference.NewService(formatRepo))
	tagHandler := handler.NewTagHandler(reference.NewService(tagRepo))

	// 10. 初始化Gin引擎与路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1/api")
	{
		bookHandler.Register(v1)
		stockHandler.Register(v1)
		authorHandler.Register(v1, "author", "authors")
		publisherHandler.Register(v1, "publisher", "publishers")
		genreHandler.Register(v1, "genre", "genres")
		languageHandler.Register(v1, "language", "languages")
		formatHandler.Register(v1, "format", "formats")
		tagHandler.Register(v1, "tag", "tags")
	}

	// 11. 启动后台组件
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retrySched.Start(ctx, applier)
	listener.Start(ctx)

	// 12. 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", srv.Addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", srv.Addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", srv.Addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 13. 等待退出信号,优雅停机
	// 顺序:停止取新消息 → 等在途消息处理完 → 停调度器 → 关HTTP → 关连接
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号,开始优雅停机...")

	cancel()
	listener.Wait()
	retrySched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP服务关闭异常: %v", err)
	}

	consumer.Close()
	publisher.Close()
	redisClient.Close()
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("服务已退出")
}
