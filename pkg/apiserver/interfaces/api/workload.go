package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"kubemin-workload/pkg/apiserver/domain/service"
	apis "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
	"kubemin-workload/pkg/apiserver/utils/bcode"
)

const yamlContentType = "application/yaml; charset=utf-8"

type workload struct {
	WorkloadService service.WorkloadService `inject:""`
}

// NewWorkload creates the compile/decompile handler.
func NewWorkload() Interface {
	return &workload{}
}

func (w *workload) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/workloads/kinds", w.listKinds)
	group.POST("/workloads/compile", w.compileWorkload)
	group.POST("/workloads/decompile", w.decompileWorkload)
	group.POST("/workloads/validate", w.validateWorkload)
}

func (w *workload) listKinds(c *gin.Context) {
	c.JSON(http.StatusOK, w.WorkloadService.ListKinds(c.Request.Context()))
}

// compileWorkload renders a config. ?format=yaml answers with the YAML text
// alone; the default JSON body carries both the tree and the text.
func (w *workload) compileWorkload(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", apis.FormatJSON))
	if format != apis.FormatJSON && format != apis.FormatYAML {
		bcode.ReturnError(c, bcode.ErrUnsupportedFormat)
		return
	}
	var req apis.CompileWorkloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	if !req.SkipValidation {
		if result := w.WorkloadService.Validate(ctx, req.Kind, &req.Config); !result.Valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"business_code": bcode.ErrWorkloadConfig.BusinessCode,
				"message":       bcode.ErrWorkloadConfig.Message,
				"errors":        result.Errors,
			})
			return
		}
	}
	resp, err := w.WorkloadService.Compile(ctx, req)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}
	if format == apis.FormatYAML {
		c.Data(http.StatusOK, yamlContentType, []byte(resp.YAML))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// decompileWorkload accepts either a JSON request or a raw YAML body.
func (w *workload) decompileWorkload(c *gin.Context) {
	var req apis.DecompileWorkloadRequest
	if isYAMLContent(c.ContentType()) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			returnBindError(c, err)
			return
		}
		req.YAML = string(body)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		returnBindError(c, err)
		return
	}
	resp, err := w.WorkloadService.Decompile(c.Request.Context(), req)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// validateWorkload always answers 200; the verdict is in the body.
func (w *workload) validateWorkload(c *gin.Context) {
	var req apis.ValidateWorkloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.WorkloadService.Validate(c.Request.Context(), req.Kind, &req.Config))
}

func returnBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		bcode.ReturnError(c, bcode.ErrRequestTooLarge)
		return
	}
	klog.V(4).InfoS("reject request body", "path", c.FullPath(), "err", err)
	bcode.ReturnError(c, bcode.ErrInvalidRequestBody)
}

func isYAMLContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
