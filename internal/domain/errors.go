package domain

import "errors"

var (
	// ErrConfigurationIncomplete 配置缺少存储地址/凭证/表名或任一列映射，查询前即拒绝
	ErrConfigurationIncomplete = errors.New("configuration is incomplete")

	// ErrInvalidConfiguration 配置字段存在但取值非法（如未知的 count source）
	ErrInvalidConfiguration = errors.New("configuration is invalid")

	// ErrStoreQueryFailed row store rejected or could not serve a select
	ErrStoreQueryFailed = errors.New("store query failed")

	// ErrStoreUpdateFailed row store rejected or could not serve an update
	ErrStoreUpdateFailed = errors.New("store update failed")

	// ErrUnknownField logical field name is not part of the column mapping
	ErrUnknownField = errors.New("unknown field")
)

// ErrInvalidFieldValue value type does not fit the target field
var ErrInvalidFieldValue = errors.New("invalid field value")
