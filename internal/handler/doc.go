// Package handler 按领域分子包存放 HTTP Handler
//
// 本文件让 `swag init --dir ./internal/handler` 能把该目录识别为 Go 包。
//
// @title 酒店预订服务 API
// @version 1.0
// @description 房间目录、可订查询、预订状态流转、住客报表与房态看板
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package handler
