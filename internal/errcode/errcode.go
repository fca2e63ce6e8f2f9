package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/校验类错误（请求可纠正后重试）
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	ValidationError = 4000
	UnknownLayout   = 4001
	InvalidPath     = 4002
	ResourceMissing = 4004
	PayloadTooLarge = 4013
	SystemError     = 5000
	UpstreamFailure = 5002
)
