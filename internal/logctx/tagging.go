package logctx

import (
	"context"
	"gelfsend/internal/global"
)

// Returns a context whose tag list has newTag appended (parent list untouched)
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	parent := GetTagList(ctx)
	tags := make([]string, len(parent), len(parent)+1)
	copy(tags, parent)
	tags = append(tags, newTag)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Returns a context without the most specific tag
func RemoveLastCtxTag(ctx context.Context) (newCtx context.Context) {
	parent := GetTagList(ctx)
	if len(parent) == 0 {
		newCtx = ctx
		return
	}
	tags := append([]string(nil), parent[:len(parent)-1]...)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Tag list in broad->specific order, empty when none set
func GetTagList(ctx context.Context) (tags []string) {
	tags, ok := ctx.Value(global.LogTagsKey).([]string)
	if !ok {
		tags = []string{}
	}
	return
}
