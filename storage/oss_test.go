package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSSFailedKeys_AllDeleted(t *testing.T) {
	// 顺序不同也算全部删除
	assert.Empty(t, ossFailedKeys([]string{"a", "b", "c"}, []string{"c", "a", "b"}))
	assert.Empty(t, ossFailedKeys(nil, nil))
}

func TestOSSFailedKeys_MissingKeysReported(t *testing.T) {
	failed := ossFailedKeys([]string{"a", "b", "c", "d"}, []string{"c", "a"})
	require.Len(t, failed, 2)
	assert.Equal(t, "b", failed[0].Key)
	assert.Equal(t, "d", failed[1].Key)
	for _, f := range failed {
		assert.True(t, errors.Is(f.Err, errOSSNotDeleted))
	}

	// 交给调用方时按失败 key 计数
	var batchErr *BatchError
	require.True(t, errors.As(error(&BatchError{Failed: failed}), &batchErr))
	assert.Len(t, batchErr.Failed, 2)
}

func TestOSSFailedKeys_EmptyResult(t *testing.T) {
	failed := ossFailedKeys([]string{"x", "y"}, nil)
	require.Len(t, failed, 2)
	assert.Equal(t, []string{"x", "y"}, []string{failed[0].Key, failed[1].Key})
}

func TestOSSBucketURL(t *testing.T) {
	assert.Equal(t, "https://pics.oss-cn-hangzhou.aliyuncs.com",
		ossBucketURL("https://oss-cn-hangzhou.aliyuncs.com/", "pics"))
	assert.Equal(t, "https://pics.oss-cn-hangzhou.aliyuncs.com",
		ossBucketURL("oss-cn-hangzhou.aliyuncs.com", "pics"))
}
