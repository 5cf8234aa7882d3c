package rules

import "github.com/StinkyLord/archmap/internal/model"

// defaultTable builds the built-in rule set. Technology patterns are
// heuristic by design: they match free text anywhere in a file, including
// comments and string literals. That trades false positives for zero
// language tooling, which is the whole point of this analyzer.
func defaultTable() *Table {
	tech := map[Category][]*Rule{
		model.CategoryFramework: {
			mustRule("FastAPI", `fastapi`, `fast-api`),
			mustRule("Django", `django`),
			mustRule("Flask", `flask`),
			mustRule("Starlette", `starlette`),
			mustRule("Express.js", `"express"\s*:`, `require\(['"]express['"]\)`),
			mustRule("Fastify", `"fastify"\s*:`, `require\(['"]fastify['"]\)`),
			mustRule("Koa.js", `"koa"\s*:`, `require\(['"]koa['"]\)`),
			mustRule("Next.js", `"next"\s*:`),
			mustRule("Nuxt.js", `"nuxt"\s*:`),
		},
		model.CategoryDatabase: {
			mustRule("PostgreSQL", `psycopg2`, `asyncpg`, `postgresql://`, `postgres://`),
			mustRule("MySQL", `pymysql`, `mysql://`, `\bmysql\b`),
			mustRule("MongoDB", `pymongo`, `MongoClient`, `mongodb://`, `\bmongodb\b`),
			mustRule("SQLite", `sqlite3`, `sqlite://`, `\.db$`, `\.sqlite$`),
			mustRule("Redis", `redis://`, `\bredis\b`),
			mustRule("DynamoDB", `dynamodb`, `boto3.*dynamodb`),
		},
		model.CategoryCloudAWS: {
			mustRule("S3", `boto3.*s3`, `s3_client`, `\.s3\.`, `aws.*s3`, `\bs3\b`),
			mustRule("Lambda", `\blambda_handler\b`, `aws.*lambda`, `aws_lambda`),
			mustRule("SNS", `\bsns\b`, `aws.*sns`),
			mustRule("SQS", `\bsqs\b`, `aws.*sqs`),
			mustRule("RDS", `\brds\b`, `aws.*rds`),
			mustRule("DynamoDB", `dynamodb`, `aws.*dynamodb`),
			mustRule("CloudWatch", `cloudwatch`),
			mustRule("API Gateway", `apigateway`, `api.*gateway`),
		},
		model.CategoryCloudGCP: {
			mustRule("Cloud Storage", `google.*storage`, `\bgcs\b`, `cloud.*storage`),
			mustRule("BigQuery", `bigquery`),
			mustRule("Pub/Sub", `pubsub`, `pub.*sub`),
			mustRule("Cloud Functions", `cloud.*functions`, `gcp.*functions`),
		},
		model.CategoryCloudAzure: {
			mustRule("Blob Storage", `azure.*blob`, `BlobService`),
			mustRule("Service Bus", `azure.*servicebus`, `ServiceBus`),
			mustRule("Functions", `azure.*functions`, `AzureFunctions`),
		},
		model.CategoryGraphQL: {
			mustRule("Strawberry", `strawberry`),
			mustRule("Graphene", `graphene`),
			mustRule("Ariadne", `ariadne`),
		},
		model.CategoryMessageQueue: {
			mustRule("SQS", `\bsqs\b`, `boto3.*sqs`),
			mustRule("SNS", `\bsns\b`, `boto3.*sns`),
			mustRule("RabbitMQ", `rabbitmq`, `\bpika\b`),
			mustRule("Kafka", `\bkafka\b`, `confluent`),
			mustRule("Pub/Sub", `pubsub`, `google.*pubsub`),
		},
		model.CategoryCache: {
			mustRule("Redis", `redis://`, `redis_client`, `\bredis\b`),
			mustRule("Memcached", `memcached`, `pylibmc`),
		},
		model.CategoryORM: {
			mustRule("SQLAlchemy", `sqlalchemy`),
			mustRule("Django ORM", `django\.db`, `models\.Model`),
			mustRule("Peewee", `peewee`),
		},
		model.CategoryServer: {
			mustRule("Uvicorn", `uvicorn`),
			mustRule("Gunicorn", `gunicorn`),
		},
		model.CategoryScheduler: {
			mustRule("APScheduler", `apscheduler`),
			mustRule("Celery", `celery`),
		},
		model.CategoryContainer: {
			mustRule("Docker", `(^|/)Dockerfile$`),
			mustRule("Docker Compose", `docker-compose\.ya?ml$`),
			mustRule("Kubernetes", `(?s)\bapiVersion:.*\bkind:\s`),
		},
	}

	// techOrder fixes the category iteration order for deterministic output.
	var techOrder []Category
	for _, cat := range model.Categories {
		if _, ok := tech[cat]; ok {
			techOrder = append(techOrder, cat)
		}
	}

	structural := []StructuralRule{
		{
			Category: model.CategoryController,
			Dirs: []string{
				"controllers", "controller",
				"routes", "route",
				"views", "view",
				"handlers", "handler",
				"endpoints", "endpoint",
			},
		},
		{
			Category:     model.CategoryService,
			Dirs:         []string{"services", "service"},
			StemSuffixes: []string{"_service", "Service"},
			StemContains: "service",
		},
		{
			Category:     model.CategoryGraphQL,
			Dirs:         []string{"resolvers", "resolver", "graphql"},
			StemSuffixes: []string{"_resolver", "Resolver"},
		},
		{
			Category:     model.CategoryModel,
			Dirs:         []string{"models", "model"},
			StemSuffixes: []string{"_model", "Model"},
		},
		{
			Category:     model.CategoryBackgroundJob,
			Dirs:         []string{"jobs", "job", "tasks", "task", "cron", "workers"},
			StemSuffixes: []string{"_job", "_task"},
		},
	}

	return &Table{
		tech:       tech,
		techOrder:  techOrder,
		structural: structural,
		frameworks: []string{"FastAPI", "Django", "Flask", "Starlette"},
	}
}
