package service

import "errors"

// 账本操作的错误分类。账本内部从不自动重试：
// 响应丢失时重试可能把同一个 delta 落两次，重试与否交给用户侧决定。
var (
	// ErrUnauthenticated 无登录态，未发起任何写，调用方应引导登录
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidName 社区名本地校验失败，未访问存储
	ErrInvalidName = errors.New("invalid community name")
	// ErrNameTaken 社区名已被占用，事务中止，未写入任何文档
	ErrNameTaken = errors.New("community name taken")
	// ErrWriteFailed 存储拒绝或传输失败；投票/成员操作客户端状态不变，创建则已整体回滚
	ErrWriteFailed = errors.New("write failed")
	// ErrNotFound 目标帖子/社区在读与写之间消失，直接上抛不重试
	ErrNotFound = errors.New("not found")
)
