package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"stanza/pkg/blob"
	"stanza/pkg/comments"
	"stanza/pkg/config"
	"stanza/pkg/handlers"
	"stanza/pkg/identity"
	"stanza/pkg/mail"
	"stanza/pkg/middleware"
	"stanza/pkg/posts"
	"stanza/pkg/ratelimit"
	"stanza/pkg/session"
	"stanza/pkg/user"
	"stanza/pkg/votes"

	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	createSchema = `CREATE TABLE IF NOT EXISTS users (
		id int(11) unsigned NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(50) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_email (email)
	) ENGINE=INNODB DEFAULT CHARSET=utf8;`
)

func main() {
	// missing .env is fine; env may come from the process
	godotenv.Load()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	app := &Application{Config: cfg}
	app.Run()
}

type Application struct {
	Config config.Config

	HTTPServer *http.Server
}

func (a *Application) Run() {
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync() // flushes buffer, if any
	logger := zapLogger.Sugar()

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		panic(err.Error())
	}

	db, err := sql.Open("mysql", a.Config.MySQLDSN)
	if err != nil {
		panic(err.Error())
	}

	defer db.Close()
	if err = db.Ping(); err != nil {
		panic(err)
	}

	if _, err = db.Exec(createSchema); err != nil {
		panic(err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := posts.NewMongoClient(ctx, a.Config.MongoURI)
	if err != nil {
		panic(err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}

	mongoDB := client.Database(a.Config.MongoDB)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = votes.EnsureIndexes(ctx, mongoDB); err != nil {
		panic(err)
	}

	smJWT := session.NewSessionsJWTManager([]byte(a.Config.SessionSecret), a.Config.SecureCookies)
	sm := session.NewSessionManagerRedis(rdb, smJWT)

	userRepo := user.NewUserRepoSQL(db)
	postsRepo := posts.NewPostsRepoMongo(mongoDB)
	commentsRepo := comments.NewCommentsRepoMongo(mongoDB)
	votesRepo := votes.NewVotesRepoMongo(mongoDB)

	var limiter ratelimit.Limiter
	if a.Config.RateLimitsRedis {
		limiter = ratelimit.NewRedisLimiter(rdb, a.Config.RateLimit, a.Config.RateWindow)
	} else {
		limiter = ratelimit.NewMemoryLimiter(a.Config.RateLimit, a.Config.RateWindow)
	}

	sender := mail.NewResendSender(a.Config.MailAPIKey, a.Config.MailFrom)
	provider := identity.NewMagicLinkProvider(rdb, sender, a.Config.AppURL)

	var images blob.Store
	if a.Config.S3Bucket != "" {
		awsSess, err := awssession.NewSession(&aws.Config{Region: aws.String(a.Config.S3Region)})
		if err != nil {
			panic(err)
		}
		images = blob.NewS3Store(awsSess, a.Config.S3Bucket)
	} else {
		logger.Warn("S3_BUCKET not set, image uploads disabled")
	}

	authHandler := &handlers.AuthHandler{
		Sm:       sm,
		Repo:     userRepo,
		Provider: provider,
		Limiter:  limiter,
		Logger:   logger,
	}

	postsHandler := &handlers.PostHandler{
		PostsRepo:    postsRepo,
		CommentsRepo: commentsRepo,
		Images:       images,
		Logger:       logger,
	}

	commentsHandler := &handlers.CommentHandler{
		CommentsRepo: commentsRepo,
		PostsRepo:    postsRepo,
		Logger:       logger,
	}

	votesHandler := &handlers.VoteHandler{
		VotesRepo: votesRepo,
		PostsRepo: postsRepo,
		Logger:    logger,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/").Subrouter()

	api.HandleFunc("/auth/link", authHandler.RequestLink).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", authHandler.Verify).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	api.HandleFunc("/posts", postsHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/posts", postsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/post/{id}", postsHandler.GetByID).Methods(http.MethodGet)

	api.HandleFunc("/post/{id}/comments", commentsHandler.Add).Methods(http.MethodPost)

	api.HandleFunc("/votes", votesHandler.Cast).Methods(http.MethodPost)
	api.HandleFunc("/votes", votesHandler.ByDevice).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteResponse(w, "not found", http.StatusNotFound)
	})

	handler := middleware.Auth(logger, sm, r)
	handler = middleware.Log(logger, handler)
	handler = middleware.CORS(a.Config.AllowedOrigins, handler)
	handler = middleware.Recover(logger, handler)

	srv := &http.Server{
		Handler:      handler,
		Addr:         a.Config.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	a.HTTPServer = srv

	logger.Infof("Started server at %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
