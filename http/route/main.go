package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/http/controller"
	middlewares "github.com/tnqbao/gau-catalog-service/http/middleware"
	"github.com/tnqbao/gau-catalog-service/utils"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.RequestIDMiddleware, middles.CORSMiddleware)
	r.GET("/healthz", ctrl.HealthCheck)

	apiRoutes := r.Group(utils.CatalogBasePath)
	{
		apiRoutes.Use(middles.SessionMiddleware)

		bucketRoutes := apiRoutes.Group("/buckets")
		{
			bucketRoutes.POST("", ctrl.CreateBucket)
			bucketRoutes.GET("", ctrl.ListBuckets)
			bucketRoutes.GET("/:bucket", ctrl.GetBucket)
			bucketRoutes.DELETE("/:bucket", ctrl.DeleteBucket)

			bucketRoutes.POST("/:bucket/grants", ctrl.CreateBucketGrant)
			bucketRoutes.GET("/:bucket/grants", ctrl.ListBucketGrants)
			bucketRoutes.DELETE("/:bucket/grants/:id", ctrl.DeleteBucketGrant)
		}

		resourceRoutes := bucketRoutes.Group("/:bucket/resources")
		{
			resourceRoutes.POST("", ctrl.CreateCatalogObject)
			resourceRoutes.GET("", ctrl.ListCatalogObjects)
			resourceRoutes.GET("/:name", ctrl.GetCatalogObject)
			resourceRoutes.GET("/:name/raw", ctrl.GetCatalogObjectRaw)
			resourceRoutes.DELETE("/:name", ctrl.DeleteCatalogObject)

			resourceRoutes.POST("/:name/revisions", ctrl.CreateRevision)
			resourceRoutes.GET("/:name/revisions", ctrl.ListRevisions)
			resourceRoutes.GET("/:name/revisions/:commit_id", ctrl.GetRevision)
			resourceRoutes.GET("/:name/revisions/:commit_id/raw", ctrl.GetRevisionRaw)
			resourceRoutes.PUT("/:name/revisions/:commit_id", ctrl.RestoreRevision)

			resourceRoutes.POST("/:name/grants", ctrl.CreateObjectGrant)
			resourceRoutes.GET("/:name/grants", ctrl.ListObjectGrants)
			resourceRoutes.DELETE("/:name/grants/:id", ctrl.DeleteObjectGrant)
		}
	}
	return r
}
