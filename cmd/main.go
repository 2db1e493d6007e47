package main

import (
	"k8s.io/klog/v2"

	"kubemin-workload/cmd/server/app"
)

func main() {
	cmd := app.NewCommand()
	if err := cmd.Execute(); err != nil {
		klog.Fatalf("run command: %v", err)
	}
}
