package service

import (
	"kubemin-workload/pkg/apiserver/config"
)

// InitServiceBean init all service instance
func InitServiceBean(c config.Config) []interface{} {
	workloadService := NewWorkloadService(c)

	return []interface{}{
		workloadService,
	}
}
